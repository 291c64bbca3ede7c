package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"wsi-recon/internal/domain/entity"
)

type pointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type boxDTO struct {
	Start pointDTO `json:"start"`
	End   pointDTO `json:"end"`
}

type detectionDTO struct {
	ClassName  string     `json:"class_name"`
	Confidence float64    `json:"confidence"`
	Box        boxDTO     `json:"box"`
	Polygon    []pointDTO `json:"polygon,omitempty"`
	Model      string     `json:"model,omitempty"`
}

type slideInfoDTO struct {
	Path   string  `json:"path"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Levels int     `json:"levels,omitempty"`
	MPP    float64 `json:"mpp,omitempty"`
}

type resultsDTO struct {
	WSIInfo     slideInfoDTO   `json:"wsi_info"`
	Predictions []detectionDTO `json:"predictions"`
}

// LoadDetections читает сырые детекции из JSON-файла.
func LoadDetections(path string) ([]entity.Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections file: %w", err)
	}

	var dtos []detectionDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse detections file: %w", err)
	}

	dets := make([]entity.Detection, len(dtos))
	for i, d := range dtos {
		dets[i] = entity.Detection{
			Class:      d.ClassName,
			Confidence: d.Confidence,
			Box:        entity.Box{Start: entity.Point(d.Box.Start), End: entity.Point(d.Box.End)},
			Model:      d.Model,
		}
		if len(d.Polygon) > 0 {
			poly := make(entity.Polygon, len(d.Polygon))
			for j, pt := range d.Polygon {
				poly[j] = entity.Point(pt)
			}
			dets[i].Polygon = poly
		}
	}
	return dets, nil
}

// SaveResultsJSON пишет согласованные регионы вместе с данными слайда.
func SaveResultsJSON(path string, slide entity.SlideInfo, regions []entity.MergedDetection) error {
	out := resultsDTO{
		WSIInfo: slideInfoDTO{
			Path:   slide.Path,
			Width:  slide.Width,
			Height: slide.Height,
			Levels: slide.Levels,
			MPP:    slide.MPP,
		},
		Predictions: make([]detectionDTO, len(regions)),
	}
	for i, r := range regions {
		dto := detectionDTO{
			ClassName:  r.Class,
			Confidence: r.Confidence,
			Box: boxDTO{
				Start: pointDTO(r.Box.Start),
				End:   pointDTO(r.Box.End),
			},
		}
		if len(r.Polygon) > 0 {
			dto.Polygon = make([]pointDTO, len(r.Polygon))
			for j, pt := range r.Polygon {
				dto.Polygon[j] = pointDTO(pt)
			}
		}
		out.Predictions[i] = dto
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
