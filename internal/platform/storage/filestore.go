package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// FileStore writes merged audio tracks under one output directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "storage.files", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the audio payload and returns its path. Filenames embed the
// provider and a UUID so concurrent jobs never collide.
func (f *FileStore) Save(audio []byte, contentType, provider string) (string, error) {
	const op = "storage.files.save"

	if len(audio) == 0 {
		return "", platformerrors.New(platformerrors.KindValidation, op, "audio payload is empty")
	}

	name := fmt.Sprintf("%s_%s_%s%s",
		provider,
		time.Now().Format("20060102T150405"),
		uuid.NewString()[:8],
		extensionFor(contentType),
	)
	path := filepath.Join(f.dir, name)

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", platformerrors.Wrap(platformerrors.KindStorage, op, err)
	}
	return path, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	default:
		return ".pcm"
	}
}
