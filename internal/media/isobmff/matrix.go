package isobmff

// IdentityMatrix is the unity tkhd matrix.
var IdentityMatrix = [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000}
