package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nexusatelier/atelier-backend/internal/domain"
)

/*
Profile captures the per-type differences of the pipeline: asset kind,
CDN layout, default media shape. The control flow in Pipeline is the
same for every type; only these values and the metadata builders vary.
*/
type Profile struct {
	Type        domain.JobType
	AssetKind   domain.AssetType
	PathSegment string
	Extension   string
	Thumbnail   bool
}

func VideoProfile() Profile {
	return Profile{
		Type:        domain.JobTypeVideo,
		AssetKind:   domain.AssetTypeVideo,
		PathSegment: "videos",
		Extension:   "mp4",
		Thumbnail:   true,
	}
}

func ImageProfile() Profile {
	return Profile{
		Type:        domain.JobTypeImage,
		AssetKind:   domain.AssetTypeImage,
		PathSegment: "images",
		Extension:   "png",
	}
}

func AudioProfile() Profile {
	return Profile{
		Type:        domain.JobTypeAudio,
		AssetKind:   domain.AssetTypeAudio,
		PathSegment: "audio",
		Extension:   "mp3",
	}
}

func WorkflowProfile() Profile {
	return Profile{
		Type:        domain.JobTypeWorkflow,
		AssetKind:   domain.AssetTypeWorkflow,
		PathSegment: "workflows",
		Extension:   "json",
	}
}

// mediaShape is the resolved media description for one job: defaults
// merged with whatever the params specified.
type mediaShape struct {
	AssetMetadata   map[string]any
	ResultMetadata  map[string]any
	DurationSeconds *float64
	Resolution      string
	Format          string
}

func (p Profile) shape(params domain.JobParams) mediaShape {
	switch p.Type {
	case domain.JobTypeVideo:
		duration := 10.0
		switch v := params.(type) {
		case *domain.TextToVideoParams:
			if v.DurationSeconds > 0 {
				duration = v.DurationSeconds
			}
		case *domain.ImageToVideoParams:
			if v.DurationSeconds > 0 {
				duration = v.DurationSeconds
			}
		}
		return mediaShape{
			AssetMetadata: map[string]any{
				"width":            1920,
				"height":           1080,
				"fps":              30,
				"codec":            "h264",
				"duration_seconds": duration,
				"format":           "mp4",
			},
			ResultMetadata: map[string]any{
				"duration":   duration,
				"resolution": "1920x1080",
				"fps":        30,
				"codec":      "h264",
			},
			DurationSeconds: &duration,
			Resolution:      "1920x1080",
			Format:          "mp4",
		}
	case domain.JobTypeImage:
		resolution := "1024x1024"
		if v, ok := params.(*domain.TextToImageParams); ok && strings.TrimSpace(v.Resolution) != "" {
			resolution = v.Resolution
		}
		width, height := parseResolution(resolution, 1024, 1024)
		return mediaShape{
			AssetMetadata: map[string]any{
				"width":  width,
				"height": height,
				"format": "png",
			},
			ResultMetadata: map[string]any{
				"resolution": fmt.Sprintf("%dx%d", width, height),
				"format":     "png",
			},
			Resolution: fmt.Sprintf("%dx%d", width, height),
			Format:     "png",
		}
	case domain.JobTypeAudio:
		duration := 30.0
		if v, ok := params.(*domain.AudioGenerationParams); ok && v.DurationSeconds > 0 {
			duration = v.DurationSeconds
		}
		return mediaShape{
			AssetMetadata: map[string]any{
				"channels":         2,
				"sample_rate":      44100,
				"duration_seconds": duration,
				"format":           "mp3",
			},
			ResultMetadata: map[string]any{
				"duration": duration,
				"format":   "mp3",
			},
			DurationSeconds: &duration,
			Format:          "mp3",
		}
	}
	workflowType := ""
	if v, ok := params.(*domain.WorkflowParams); ok {
		workflowType = v.WorkflowType
	}
	return mediaShape{
		AssetMetadata: map[string]any{
			"workflow_type": workflowType,
			"format":        "json",
		},
		ResultMetadata: map[string]any{
			"workflow_type": workflowType,
		},
		Format: "json",
	}
}

func parseResolution(s string, defWidth, defHeight int) (int, int) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return defWidth, defHeight
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return defWidth, defHeight
	}
	return width, height
}
