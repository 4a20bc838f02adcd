package scan

// Warning is an advisory attached to a FolderHit; it never blocks scan
// completion (spec §4.3).
type Warning string

const (
	WarningLongPath    Warning = "LongPath"
	WarningAclDiffers  Warning = "AclDiffers"
	WarningOffline     Warning = "Offline"
	WarningAccessDenied Warning = "AccessDenied"
	WarningJunction    Warning = "Junction"
	WarningCrossVolume Warning = "CrossVolume"
)

// longPathThreshold is the character count above which a path earns a
// LongPath warning (spec §4.3, matches the MAX_PATH-adjacent 247 figure
// Windows shell operations use for directories).
const longPathThreshold = 247

// FolderHit is a folder the matcher accepted (or that could not be
// enumerated), together with its previewed destination. Immutable once
// produced (spec §3).
type FolderHit struct {
	SourcePath  string
	FolderName  string
	MatchedRule string // empty means no rule matched
	DestPreview string // empty means no destination preview
	Warnings    []Warning
	SizeBytes   *int64 // nil unless requested
}

func (h FolderHit) hasWarning(w Warning) bool {
	for _, existing := range h.Warnings {
		if existing == w {
			return true
		}
	}
	return false
}

func (h *FolderHit) addWarning(w Warning) {
	if !h.hasWarning(w) {
		h.Warnings = append(h.Warnings, w)
	}
}
