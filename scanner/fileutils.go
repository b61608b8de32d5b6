package scanner

import (
	"errors"
	"fmt"
	"os"

	"wallsorter/imageprocessor"
	"wallsorter/types"
)

// ErrEmptyBatch is returned when a folder holds no eligible images
var ErrEmptyBatch = errors.New("there are no images in this folder")

// ListImages returns the .png, .jpg and .jpeg files directly inside dir,
// sorted by name. Subfolders, including earlier relocation targets, are not
// entered.
func ListImages(dir string) ([]types.ImageRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}

	var refs []types.ImageRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageprocessor.IsBatchImage(entry.Name()) {
			refs = append(refs, types.ImageRef(entry.Name()))
		}
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyBatch)
	}
	return refs, nil
}
