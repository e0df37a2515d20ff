package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from the dataset with
	// the given hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of a rendering of the layout with the
	// given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every input of a layout besides the dataset.
type LayoutKeyOpts struct {
	Anchor      string    `json:"anchor"`
	Geometry    []float64 `json:"geometry"`
	ExpandBands int       `json:"expand_bands"`
	Expanded    []string  `json:"expanded"` // Sorted ids of expanded nodes
	Focus       string    `json:"focus,omitempty"`
	Viewport    []float64 `json:"viewport,omitempty"`
}

// ArtifactKeyOpts lists every input of a rendering besides the layout.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, datasetHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}
