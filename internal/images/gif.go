package images

import (
	"bytes"
	"fmt"
	"image/gif"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

func readGIF(data []byte) ([]metadata.InfoEntry, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode GIF: %w", err)
	}

	info := []metadata.InfoEntry{
		{Key: "version", Value: string(data[:6])},
		{Key: "background", Value: int64(g.BackgroundIndex)},
	}
	if g.LoopCount >= 0 {
		info = append(info, metadata.InfoEntry{Key: "loop", Value: int64(g.LoopCount)})
	}
	if len(g.Delay) > 0 && g.Delay[0] > 0 {
		info = append(info, metadata.InfoEntry{Key: "duration", Value: int64(g.Delay[0]) * 10})
	}
	return info, nil
}
