package imageprocessor

import (
	"fmt"
	"image"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"wallsorter/logging"
)

// ImageLoaderRegistry maintains a registry of image loaders
type ImageLoaderRegistry struct {
	loaders        map[string]ImageLoader
	defaultLoader  ImageLoader
	fallbackLoader ImageLoader
	mutex          sync.RWMutex
}

// NewImageLoaderRegistry creates a new image loader registry with the
// standard loader registered for every decodable extension
func NewImageLoaderRegistry(autoOrient bool) *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	registry.registerStandardLoaders(autoOrient)

	return registry
}

// registerStandardLoaders registers loaders for standard image formats
func (r *ImageLoaderRegistry) registerStandardLoaders(autoOrient bool) {
	standardLoader := NewStandardImageLoader(autoOrient)

	for _, ext := range GetSupportedExtensions() {
		r.RegisterLoader(ext, standardLoader)
	}

	r.defaultLoader = standardLoader
}

// RegisterLoader registers a new loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ext = strings.ToLower(ext)
	r.loaders[ext] = loader
}

// SetFallbackLoader sets a loader that is tried when the primary loader fails
func (r *ImageLoaderRegistry) SetFallbackLoader(loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.fallbackLoader = loader
}

// GetLoader returns the appropriate loader for the given path
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader
	}

	return r.defaultLoader
}

// CanLoadFile checks if any registered loader can handle the given file
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	_, ok := r.loaders[ext]
	return ok
}

// LoadImage loads an image using the appropriate registered loader, falling
// back to the fallback loader if one is set. Any failure is a *DecodeError.
func (r *ImageLoaderRegistry) LoadImage(path string) (image.Image, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, &DecodeError{Path: path, Err: newImageLoadError("no suitable loader found", path)}
	}

	img, err := safeLoad(loader, path)
	if err == nil {
		return img, nil
	}

	r.mutex.RLock()
	fallback := r.fallbackLoader
	r.mutex.RUnlock()

	if fallback != nil && fallback != loader && fallback.CanLoad(path) {
		logging.LogWarning("Primary loader failed for %s: %v, trying fallback loader", path, err)
		img, fallbackErr := safeLoad(fallback, path)
		if fallbackErr == nil {
			return img, nil
		}
		logging.LogWarning("Fallback loader failed for %s: %v", path, fallbackErr)
	}

	return nil, &DecodeError{Path: path, Err: err}
}

// safeLoad recovers from decoder panics on malformed input
func safeLoad(loader ImageLoader, path string) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.LogError("Panic during image loading: %v, file: %s\nStack trace: %s", rec, path, string(debug.Stack()))
			img = nil
			err = fmt.Errorf("panic during image loading: %v", rec)
		}
	}()

	img, err = loader.LoadImage(path)
	if err == nil && img == nil {
		err = newImageLoadError("loader returned no image", path)
	}
	return img, err
}
