package service

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// FileSource serves subscriber profiles from a JSON array.
type FileSource struct {
	profiles []SubscriberProfile
}

// NewFileSource decodes profiles from a JSON array.
func NewFileSource(document []byte) (*FileSource, error) {
	var profiles []SubscriberProfile
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(document, &profiles); err != nil {
		return nil, fmt.Errorf("decoding subscriber profiles failed: %w", err)
	}

	return &FileSource{profiles: profiles}, nil
}

// LoadFileSource reads profiles from the JSON file at path.
func LoadFileSource(path string) (*FileSource, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading subscriber file failed: %w", err)
	}

	return NewFileSource(document)
}

// ListSubscribers returns at most limit profiles starting at offset.
func (f *FileSource) ListSubscribers(ctx context.Context, limit, offset uint) ([]SubscriberProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset >= uint(len(f.profiles)) {
		return nil, nil
	}

	end := uint(len(f.profiles))
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return f.profiles[offset:end], nil
}
