package cache

// Keyer generates cache keys.
type Keyer interface {
	// InputKey identifies a parsed input (matrix plus metadata) by content hash.
	InputKey(inputHash string) string

	// ArtifactKey identifies one rendered artifact of one threshold.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every option that changes the bytes of a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Threshold  string  `json:"threshold"`
	Direction  string  `json:"direction"`
	Title      string  `json:"title"`
	Theme      string  `json:"theme"`
	StartAngle float64 `json:"start_angle"`
	Gap        float64 `json:"gap"`
	Boundaries []int   `json:"boundaries"`
	Clockwise  bool    `json:"clockwise"`
	Between    bool    `json:"start_between"`
	ShowNames  bool    `json:"show_names"`
	Size       int     `json:"size"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// InputKey generates a key for parsed input data.
func (DefaultKeyer) InputKey(inputHash string) string {
	return "input:" + inputHash
}

// ArtifactKey generates a key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
