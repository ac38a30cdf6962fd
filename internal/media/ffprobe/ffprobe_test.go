package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestParseSkipsAttachedPictures(t *testing.T) {
	payload := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "mjpeg", "disposition": {"attached_pic": 1}},
			{"index": 1, "codec_type": "video", "codec_name": "h264", "start_time": "0.000000", "duration": "10.010000",
			 "side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90}]},
			{"index": 2, "codec_type": "audio", "codec_name": "aac", "start_time": "0.021333", "duration": "9.984000"}
		],
		"format": {"duration": "10.026667", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`)

	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	videos := result.StreamsOfType(CodecTypeVideo)
	if len(videos) != 1 {
		t.Fatalf("expected one video stream, got %d", len(videos))
	}
	video := videos[0]
	if video.Index != 1 || video.CodecName != "h264" {
		t.Fatalf("expected h264 stream at index 1, got %+v", video)
	}
	if video.Rotation() != -90 {
		t.Fatalf("expected rotation -90, got %v", video.Rotation())
	}
	if video.DurationSeconds() != 10.01 {
		t.Fatalf("unexpected video duration %v", video.DurationSeconds())
	}
	audios := result.StreamsOfType(CodecTypeAudio)
	if len(audios) != 1 {
		t.Fatalf("expected one audio stream, got %d", len(audios))
	}
	if audios[0].StartSeconds() != 0.021333 {
		t.Fatalf("unexpected audio start %v", audios[0].StartSeconds())
	}
}

func TestStreamRotationFallsBackToRotateTag(t *testing.T) {
	stream := Stream{Tags: map[string]string{"rotate": "90"}}
	if got := stream.Rotation(); got != -90 {
		t.Fatalf("expected clockwise tag to map to -90, got %v", got)
	}
	if got := (Stream{}).Rotation(); got != 0 {
		t.Fatalf("expected zero rotation without metadata, got %v", got)
	}
}

func TestStreamsOfTypeMissing(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video"}}}
	if got := result.StreamsOfType(CodecTypeAudio); len(got) != 0 {
		t.Fatalf("expected no audio streams, got %d", len(got))
	}
}
