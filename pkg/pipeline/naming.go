package pipeline

import (
	"strings"

	"github.com/matzehuels/circlegraph/pkg/connectivity"
)

// artifactStem is the fixed part of every artifact name.
const artifactStem = "CIRCLE_GRAPH"

// ArtifactName returns the file stem for one threshold's artifacts:
// "<Title_Words>_CIRCLE_GRAPH_THR<value>", or "CIRCLE_GRAPH_THR<value>"
// without a title. Whitespace runs in the title become single underscores.
// Names are distinct for distinct threshold values, so artifacts of one run
// never collide.
func ArtifactName(title string, value float64) string {
	thr := "_THR" + connectivity.FormatThreshold(value)
	words := strings.Fields(title)
	if len(words) == 0 {
		return artifactStem + thr
	}
	return strings.Join(words, "_") + "_" + artifactStem + thr
}
