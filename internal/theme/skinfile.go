package theme

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// SkinFile is a Source backed by a YAML skin file. The file is re-read
// whenever it changes on disk, so edits show up on the next frame.
type SkinFile struct {
	path    string
	current atomic.Pointer[Skin]
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// OpenSkinFile loads path and starts watching it.
func OpenSkinFile(path string) (*SkinFile, error) {
	skin, err := readSkin(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("skin: watcher: %w", err)
	}
	// Watch the directory: editors commonly replace files by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("skin: watch %s: %w", filepath.Dir(path), err)
	}

	sf := &SkinFile{
		path:    path,
		watcher: w,
		done:    make(chan struct{}),
	}
	sf.current.Store(&skin)

	sf.wg.Add(1)
	go sf.watch()
	return sf, nil
}

func (sf *SkinFile) watch() {
	defer sf.wg.Done()
	target := filepath.Clean(sf.path)
	for {
		select {
		case <-sf.done:
			return
		case ev, ok := <-sf.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			skin, err := readSkin(sf.path)
			if err != nil {
				log.Printf("skin: reload %s: %v", sf.path, err)
				continue
			}
			sf.current.Store(&skin)
		case err, ok := <-sf.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("skin: watcher error: %v", err)
		}
	}
}

// Current returns the most recently loaded skin.
func (sf *SkinFile) Current() Skin {
	if s := sf.current.Load(); s != nil {
		return *s
	}
	return Skin{}
}

func (sf *SkinFile) Lookup(token string) (string, bool) {
	return sf.Current().lookup(token)
}

// Close stops watching the file.
func (sf *SkinFile) Close() error {
	close(sf.done)
	err := sf.watcher.Close()
	sf.wg.Wait()
	return err
}

func readSkin(path string) (Skin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skin{}, fmt.Errorf("skin: read %s: %w", path, err)
	}
	var skin Skin
	if err := yaml.Unmarshal(data, &skin); err != nil {
		return Skin{}, fmt.Errorf("skin: parse %s: %w", path, err)
	}
	if skin.Name == "" {
		skin.Name = filepath.Base(path)
	}
	return skin, nil
}
