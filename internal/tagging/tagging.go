// SPDX-License-Identifier: MIT

// Package tagging embeds downloaded artwork into finished audio files.
package tagging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/ytgrab/ytgrab/internal/log"
)

// ImageConverter produces a baseline JPEG from an arbitrary thumbnail
// container. Implemented by the transcode stage.
type ImageConverter interface {
	ConvertImage(ctx context.Context, inputPath, outputPath string) error
}

// Embedder writes front-cover artwork into MP3 metadata.
type Embedder struct {
	converter ImageConverter
}

// NewEmbedder returns an Embedder using the given image converter.
func NewEmbedder(converter ImageConverter) *Embedder {
	return &Embedder{converter: converter}
}

// EmbedArtwork converts thumbPath to JPEG and writes it into audioPath's tag
// as the front cover, saving in place. The converted temporary image is
// removed regardless of outcome. Callers treat a returned error as non-fatal
// to the surrounding job.
func (e *Embedder) EmbedArtwork(ctx context.Context, audioPath, thumbPath string) error {
	logger := log.WithComponentFromContext(ctx, "tagging")

	jpegPath := jpegPathFor(thumbPath)
	if err := e.converter.ConvertImage(ctx, thumbPath, jpegPath); err != nil {
		return &Error{AudioPath: audioPath, Err: err}
	}
	defer func() {
		if err := os.Remove(jpegPath); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str(log.FieldPath, jpegPath).Msg("failed to remove converted artwork")
		}
	}()

	art, err := os.ReadFile(jpegPath)
	if err != nil {
		return &Error{AudioPath: audioPath, Err: err}
	}

	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		return &Error{AudioPath: audioPath, Err: fmt.Errorf("open tag: %w", err)}
	}
	defer func() {
		_ = tag.Close()
	}()

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     art,
	})
	if err := tag.Save(); err != nil {
		return &Error{AudioPath: audioPath, Err: fmt.Errorf("save tag: %w", err)}
	}

	logger.Debug().Str(log.FieldPath, audioPath).Msg("artwork embedded")
	return nil
}

func jpegPathFor(thumbPath string) string {
	if idx := strings.LastIndex(thumbPath, "."); idx > 0 {
		thumbPath = thumbPath[:idx]
	}
	return thumbPath + ".cover.jpg"
}
