package store

import (
	"encoding/json"
	"os"

	"github.com/idossha/ti-opt-core/core"
	"github.com/idossha/ti-opt-core/leadfield"
)

// electrodePositionsDoc is the on-disk schema for electrode_positions.json:
// optimized 3D coordinates plus the channel-pair index grouping that
// recovers which electrodes form each TI channel.
type electrodePositionsDoc struct {
	OptimizedPositions  [][3]float64 `json:"optimized_positions"`
	ChannelArrayIndices [][2]int     `json:"channel_array_indices"`
}

// WriteElectrodePositions writes electrode_positions.json for a flex run.
// positions holds the four resolved electrode coordinates in order
// e1+, e1-, e2+, e2-; channelPairs groups their indices into the two TI
// channels, e.g. [[0,1],[2,3]].
func WriteElectrodePositions(path string, positions []leadfield.Vec3, channelPairs [][2]int) error {
	doc := electrodePositionsDoc{
		OptimizedPositions:  make([][3]float64, len(positions)),
		ChannelArrayIndices: channelPairs,
	}
	for i, p := range positions {
		doc.OptimizedPositions[i] = [3]float64{p[0], p[1], p[2]}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return core.Wrap(core.ErrIO, "marshal electrode positions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return core.Wrap(core.ErrIO, "write %s", path)
	}
	return nil
}
