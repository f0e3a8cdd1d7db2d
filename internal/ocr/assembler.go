package ocr

import (
	"strings"

	"github.com/ipter/container-ocr-service/internal/container"
	"github.com/ipter/container-ocr-service/internal/models"
)

// IdentifierConfidence is attached to every extracted identifier. It does
// not depend on the matched token.
const IdentifierConfidence = 0.8

// BoxConfidenceThreshold is the minimum token confidence (exclusive) for a
// token to be reported as a bounding box
const BoxConfidenceThreshold = 30

// Assembly is the structured view of one recognition pass
type Assembly struct {
	Boxes       []models.BoundingBox
	Identifiers []models.ContainerNumber
	Confidence  float64
}

// Assemble extracts container identifiers from the raw text and correlates
// them, along with all confident tokens, with the token table.
func Assemble(rawText string, tokens []Token) Assembly {
	ids := container.Extract(rawText)
	identifiers := make([]models.ContainerNumber, 0, len(ids))
	for _, id := range ids {
		identifiers = append(identifiers, models.ContainerNumber{
			Number:           id,
			Confidence:       IdentifierConfidence,
			BoundingBox:      locate(id, tokens),
			ValidationStatus: models.ValidationPending,
		})
	}

	return Assembly{
		Boxes:       confidentBoxes(tokens),
		Identifiers: identifiers,
		Confidence:  OverallConfidence(tokens),
	}
}

// OverallConfidence is the mean confidence of tokens above zero, in [0,1]
func OverallConfidence(tokens []Token) float64 {
	sum, n := 0, 0
	for _, t := range tokens {
		if t.Confidence > 0 {
			sum += t.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return clampUnit(float64(sum) / float64(n) / 100)
}

func confidentBoxes(tokens []Token) []models.BoundingBox {
	boxes := []models.BoundingBox{}
	for _, t := range tokens {
		if t.Confidence > BoxConfidenceThreshold {
			boxes = append(boxes, toBox(t))
		}
	}
	return boxes
}

// locate returns the box of the first token whose text contains id
func locate(id string, tokens []Token) *models.BoundingBox {
	target := strings.ReplaceAll(strings.ToUpper(id), " ", "")
	for _, t := range tokens {
		if t.Text == "" {
			continue
		}
		if strings.Contains(strings.ReplaceAll(strings.ToUpper(t.Text), " ", ""), target) {
			box := toBox(t)
			return &box
		}
	}
	return nil
}

func toBox(t Token) models.BoundingBox {
	return models.BoundingBox{
		X:          t.X,
		Y:          t.Y,
		Width:      max(t.Width, 0),
		Height:     max(t.Height, 0),
		Confidence: clampUnit(float64(t.Confidence) / 100),
	}
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
