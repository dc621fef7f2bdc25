package assets

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/cardforge/engine/assets/loaders"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// OnAssetChanged is invoked on the watcher goroutine with the cleaned path
// of a watched file that was written or recreated.
type OnAssetChanged func(path string)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	// Watched files and how many of them live in each directory.
	watched map[string]OnAssetChanged
	dirs    map[string]int

	done      chan struct{}
	stopped   chan struct{}
	fsnotify  *fsnotify.Watcher
	closeOnce sync.Once
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		watched:  make(map[string]OnAssetChanged),
		dirs:     make(map[string]int),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})

	go am.start()

	return am, nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) loader(resourceType metadata.ResourceType) (Loader, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type %d: %w", resourceType, core.ErrInvalidParameter)
	}
	return loader, nil
}

// LoadAsset reads and decodes the file at path. Safe for concurrent use.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if t := determineAssetType(path); t != resourceType {
		core.LogDebug("extension does not match the requested type, trying anyway", "path", path, "requested", resourceType)
	}
	loader, err := am.loader(resourceType)
	if err != nil {
		return nil, err
	}
	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[filepath.Clean(path)] = AssetInfo{
		Path:       path,
		Type:       resourceType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
	return res, nil
}

// DecodeAsset decodes an in-memory blob with the loader for resourceType.
func (am *AssetManager) DecodeAsset(name string, data []byte, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, err := am.loader(resourceType)
	if err != nil {
		return nil, err
	}
	return loader.Decode(name, data, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, err := am.loader(metadata.ResourceTypeImage)
	if err != nil {
		return err
	}
	return loader.Unload(asset)
}

// Loaded returns what is known about a previously loaded path.
func (am *AssetManager) Loaded(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Clean(path)]
	return info, ok
}

/**
 * @brief Calls onChange whenever the file at path is written. The parent
 * directory is watched rather than the file so editors that replace the
 * file on save keep triggering. Watching a path again replaces its callback.
 */
func (am *AssetManager) Watch(path string, onChange OnAssetChanged) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	select {
	case <-am.done:
		return fmt.Errorf("watch %s: %w", path, core.ErrAlreadyShutdown)
	default:
	}
	if _, ok := am.watched[abs]; !ok {
		if am.dirs[dir] == 0 {
			if err := am.fsnotify.Add(dir); err != nil {
				return err
			}
		}
		am.dirs[dir]++
	}
	am.watched[abs] = onChange
	return nil
}

func (am *AssetManager) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if _, ok := am.watched[abs]; !ok {
		return nil
	}
	delete(am.watched, abs)
	am.dirs[dir]--
	if am.dirs[dir] == 0 {
		delete(am.dirs, dir)
		return am.fsnotify.Remove(dir)
	}
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher error", "err", err)

		case <-am.done:
			return
		}
	}
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	am.mutex.RLock()
	onChange, ok := am.watched[abs]
	am.mutex.RUnlock()
	if !ok {
		return
	}
	core.LogDebug("watched asset changed", "path", abs)
	onChange(abs)
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}

// Shutdown stops the watcher. It is safe to call more than once.
func (am *AssetManager) Shutdown() error {
	var err error
	am.closeOnce.Do(func() {
		am.mutex.Lock()
		close(am.done)
		am.mutex.Unlock()
		<-am.stopped
		err = am.fsnotify.Close()
	})
	return err
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	default:
		return metadata.ResourceTypeNone
	}
}
