package media

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// Metadata is the probed duration and dimensions of a video file.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
}

// Prober reads container metadata from a video file.
type Prober interface {
	Probe(path string) (*Metadata, error)
}

// Thumbnailer extracts one representative frame as a JPEG.
type Thumbnailer interface {
	Extract(videoPath, outputPath string, atSeconds float64) error
}

// FFProbe shells out to ffprobe for metadata.
type FFProbe struct{}

// ffprobeOutput matches the parts of `ffprobe -print_format json` we need
type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe and parses duration and the video stream dimensions.
func (FFProbe) Probe(path string) (*Metadata, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %v", err)
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %v", probed.Format.Duration, err)
	}

	meta := &Metadata{Duration: duration}
	for _, stream := range probed.Streams {
		if stream.CodecType == "video" {
			meta.Width = stream.Width
			meta.Height = stream.Height
			break
		}
	}
	return meta, nil
}

// FFMpegThumbnailer grabs a single frame with ffmpeg.
type FFMpegThumbnailer struct{}

// Extract writes the frame at atSeconds as a JPEG.
func (FFMpegThumbnailer) Extract(videoPath, outputPath string, atSeconds float64) error {
	cmd := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("thumbnail extraction failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}
