package meme

import (
	"path/filepath"

	"github.com/rs/xid"
)

// tempPaths are the two scratch files owned by a single pipeline run.
type tempPaths struct {
	id       string
	source   string
	rendered string
}

func newTempPaths(dir string) tempPaths {
	id := xid.New().String()
	return tempPaths{
		id:       id,
		source:   filepath.Join(dir, id+"-in"),
		rendered: filepath.Join(dir, id+"-out.png"),
	}
}
