package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// TextEncoder pins the Gemini embedding endpoint to the catalog's vector
// dimensionality. It satisfies recommend.Encoder.
type TextEncoder struct {
	gemini    Gemini
	dimension int32
}

func NewTextEncoder(gemini Gemini, dimension int) *TextEncoder {
	return &TextEncoder{gemini: gemini, dimension: int32(dimension)}
}

func (x *TextEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := x.gemini.Embedding(ctx, text, x.dimension)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode text")
	}
	return vec, nil
}
