package dcfhdupes

// Hash size constants
const (
	HashSizeMD5    = 16
	HashSizeSHA1   = 20
	HashSizeSHA256 = 32
	HashSizeSHA512 = 64
)

// Stage names, in the order the default refinement applies them
const (
	StageSize   = "size"
	StagePrefix = "prefix"
	StageHash   = "hash"
)

// Defaults shared by the config layer and the stage builder
const (
	DefaultPrefixBytes   = 32
	DefaultHashAlgorithm = "sha256"
	DefaultHashBuffer    = "2M"
	DefaultWorkers       = 4
	DefaultSymlinkMode   = "all"
	DefaultOutputFormat  = "human"
	DefaultIndentWidth   = 2
	MaxWorkers           = 64
)

// skiplistLevels is the level count for the per-split key order
const skiplistLevels = 16

// splitContext tags entries inserted into a split's key order
const splitContext = "split"
