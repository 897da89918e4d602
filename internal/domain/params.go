package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

type QualityTier string

const (
	QualityDraft    QualityTier = "draft"
	QualityStandard QualityTier = "standard"
	QualityHD       QualityTier = "hd"
	QualityPremium  QualityTier = "premium"
)

func (q QualityTier) Valid() bool {
	switch q {
	case QualityDraft, QualityStandard, QualityHD, QualityPremium:
		return true
	}
	return false
}

// Param kinds. The kind doubles as the task type fed to model selection.
const (
	KindTextToVideo     = "text-to-video"
	KindImageToVideo    = "image-to-video"
	KindVideoToVideo    = "video-to-video"
	KindTextToImage     = "text-to-image"
	KindImageEdit       = "image-edit"
	KindAudioGeneration = "audio-generation"
	KindWorkflow        = "workflow"
)

// JobParams is the tagged union of generation arguments. The concrete
// variant is selected by the "type" field of the params JSON.
type JobParams interface {
	Kind() string
	Validate() error
}

type CameraControls struct {
	LensType     string `json:"lens_type,omitempty"`
	Movement     string `json:"movement,omitempty"`
	DepthOfField string `json:"depth_of_field,omitempty"`
	Angle        string `json:"angle,omitempty"`
}

type CameraMovement struct {
	Type      string  `json:"type"`
	Intensity float64 `json:"intensity"`
	Direction string  `json:"direction,omitempty"`
}

type Keyframe struct {
	TimeSeconds float64        `json:"time_seconds"`
	Properties  map[string]any `json:"properties,omitempty"`
}

type TextToVideoParams struct {
	Type            string          `json:"type"`
	Prompt          string          `json:"prompt"`
	Style           string          `json:"style,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	Resolution      string          `json:"resolution,omitempty"`
	Quality         QualityTier     `json:"quality,omitempty"`
	FPS             int             `json:"fps,omitempty"`
	AspectRatio     string          `json:"aspect_ratio,omitempty"`
	CameraControls  *CameraControls `json:"camera_controls,omitempty"`
	ReferenceImages []string        `json:"reference_images,omitempty"`
}

func (p *TextToVideoParams) Kind() string { return KindTextToVideo }

func (p *TextToVideoParams) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if p.Quality != "" && !p.Quality.Valid() {
		return fmt.Errorf("unknown quality tier %q", p.Quality)
	}
	return nil
}

type ImageToVideoParams struct {
	Type            string          `json:"type"`
	ImageURL        string          `json:"image_url"`
	Prompt          string          `json:"prompt,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	MotionIntensity float64         `json:"motion_intensity"`
	Keyframes       []Keyframe      `json:"keyframes,omitempty"`
	CameraMovement  *CameraMovement `json:"camera_movement,omitempty"`
}

func (p *ImageToVideoParams) Kind() string { return KindImageToVideo }

func (p *ImageToVideoParams) Validate() error {
	if strings.TrimSpace(p.ImageURL) == "" {
		return fmt.Errorf("image_url is required")
	}
	return nil
}

type VideoToVideoParams struct {
	Type       string `json:"type"`
	VideoURL   string `json:"video_url"`
	Operation  string `json:"operation"`
	Prompt     string `json:"prompt"`
	EffectType string `json:"effect_type,omitempty"`
}

func (p *VideoToVideoParams) Kind() string { return KindVideoToVideo }

func (p *VideoToVideoParams) Validate() error {
	if strings.TrimSpace(p.VideoURL) == "" {
		return fmt.Errorf("video_url is required")
	}
	switch p.Operation {
	case "style_transfer", "add_object", "remove_object", "transform", "effect":
	default:
		return fmt.Errorf("unknown operation %q", p.Operation)
	}
	return nil
}

type TextToImageParams struct {
	Type           string      `json:"type"`
	Prompt         string      `json:"prompt"`
	Style          string      `json:"style,omitempty"`
	Resolution     string      `json:"resolution,omitempty"`
	Quality        QualityTier `json:"quality,omitempty"`
	AspectRatio    string      `json:"aspect_ratio,omitempty"`
	Variations     int         `json:"variations,omitempty"`
	Seed           *int64      `json:"seed,omitempty"`
	NegativePrompt string      `json:"negative_prompt,omitempty"`
}

func (p *TextToImageParams) Kind() string { return KindTextToImage }

func (p *TextToImageParams) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if p.Quality != "" && !p.Quality.Valid() {
		return fmt.Errorf("unknown quality tier %q", p.Quality)
	}
	return nil
}

type ImageEditParams struct {
	Type            string      `json:"type"`
	ImageURL        string      `json:"image_url"`
	Operation       string      `json:"operation"`
	Prompt          string      `json:"prompt,omitempty"`
	Mask            string      `json:"mask,omitempty"`
	ExpandDirection string      `json:"expand_direction,omitempty"`
	Quality         QualityTier `json:"quality,omitempty"`
}

func (p *ImageEditParams) Kind() string { return KindImageEdit }

func (p *ImageEditParams) Validate() error {
	if strings.TrimSpace(p.ImageURL) == "" {
		return fmt.Errorf("image_url is required")
	}
	switch p.Operation {
	case "inpaint", "outpaint", "erase", "expand", "background_remove":
	default:
		return fmt.Errorf("unknown operation %q", p.Operation)
	}
	return nil
}

type AudioGenerationParams struct {
	Type            string  `json:"type"`
	AudioType       string  `json:"audio_type"`
	Prompt          string  `json:"prompt"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	VoiceID         string  `json:"voice_id,omitempty"`
	Style           string  `json:"style,omitempty"`
}

func (p *AudioGenerationParams) Kind() string { return KindAudioGeneration }

func (p *AudioGenerationParams) Validate() error {
	if strings.TrimSpace(p.AudioType) == "" {
		return fmt.Errorf("audio_type is required")
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

type WorkflowParams struct {
	Type         string         `json:"type"`
	WorkflowType string         `json:"workflow_type"`
	Data         map[string]any `json:"data,omitempty"`
}

func (p *WorkflowParams) Kind() string { return KindWorkflow }

func (p *WorkflowParams) Validate() error {
	switch p.WorkflowType {
	case "storyboard", "magic_switch", "batch":
	default:
		return fmt.Errorf("unknown workflow_type %q", p.WorkflowType)
	}
	return nil
}

// DecodeParams parses raw params JSON into its typed variant. Unknown
// tags are rejected here so permissive payloads never reach the queue.
func DecodeParams(raw []byte) (JobParams, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty params")
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	var p JobParams
	switch head.Type {
	case KindTextToVideo:
		p = &TextToVideoParams{}
	case KindImageToVideo:
		p = &ImageToVideoParams{}
	case KindVideoToVideo:
		p = &VideoToVideoParams{}
	case KindTextToImage:
		p = &TextToImageParams{}
	case KindImageEdit:
		p = &ImageEditParams{}
	case KindAudioGeneration:
		p = &AudioGenerationParams{}
	case KindWorkflow:
		p = &WorkflowParams{}
	default:
		return nil, fmt.Errorf("unknown params type %q", head.Type)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", head.Type, err)
	}
	return p, nil
}

// EncodeParams serializes a variant for storage, stamping the tag so a
// hand-constructed struct round-trips through DecodeParams.
func EncodeParams(p JobParams) (datatypes.JSON, error) {
	if p == nil {
		return nil, fmt.Errorf("nil params")
	}
	stampKind(p)
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func stampKind(p JobParams) {
	switch v := p.(type) {
	case *TextToVideoParams:
		v.Type = KindTextToVideo
	case *ImageToVideoParams:
		v.Type = KindImageToVideo
	case *VideoToVideoParams:
		v.Type = KindVideoToVideo
	case *TextToImageParams:
		v.Type = KindTextToImage
	case *ImageEditParams:
		v.Type = KindImageEdit
	case *AudioGenerationParams:
		v.Type = KindAudioGeneration
	case *WorkflowParams:
		v.Type = KindWorkflow
	}
}

// JobTypeForKind maps a param kind to the queue/pipeline type that
// executes it.
func JobTypeForKind(kind string) (JobType, error) {
	switch kind {
	case KindTextToVideo, KindImageToVideo, KindVideoToVideo:
		return JobTypeVideo, nil
	case KindTextToImage, KindImageEdit:
		return JobTypeImage, nil
	case KindAudioGeneration:
		return JobTypeAudio, nil
	case KindWorkflow:
		return JobTypeWorkflow, nil
	}
	return "", fmt.Errorf("unknown params type %q", kind)
}

// QualityFor extracts the quality tier of a params variant, defaulting
// to standard for variants that omit or do not carry one.
func QualityFor(p JobParams) QualityTier {
	switch v := p.(type) {
	case *TextToVideoParams:
		if v.Quality != "" {
			return v.Quality
		}
	case *TextToImageParams:
		if v.Quality != "" {
			return v.Quality
		}
	case *ImageEditParams:
		if v.Quality != "" {
			return v.Quality
		}
	}
	return QualityStandard
}
