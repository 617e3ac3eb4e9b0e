// Command vannot aligns sequences to annotated reference models and checks
// model coordinates.
//
// Usage:
//
//	vannot [command] [options]
//
// Commands:
//
//	run         Align sequences to models
//	coords      Parse and normalize coordinate strings
//	relations   Pairwise overlap and adjacency of segments
//	indel       Parse insertion and deletion descriptions
//	seed        Ungapped regions and seed of an approximate hit
//	tiling      Check that child features tile a parent
//	minfo       Check the feature tables of a model info file
//	version     Show version information
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
