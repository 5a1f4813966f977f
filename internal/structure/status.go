package structure

// Status classifies a document relative to its translation.
type Status string

const (
	StatusNew  Status = "new"
	StatusSync Status = "sync"
	StatusDone Status = "done"
)

// ReasonMissingTranslation is reported for documents without a translation.
const ReasonMissingTranslation = "no translated document"

// ComparisonResult is the classification of one document.
type ComparisonResult struct {
	FilePath string   `json:"file_path"`
	Status   Status   `json:"status"`
	Reasons  []string `json:"reasons"`
}

// Classify compares origin content with an optional translation.
// A nil translation yields StatusNew without running the comparator.
func Classify(filePath, origin string, translated *string) ComparisonResult {
	if translated == nil {
		return ComparisonResult{
			FilePath: filePath,
			Status:   StatusNew,
			Reasons:  []string{ReasonMissingTranslation},
		}
	}

	reasons := CompareStructures(ExtractStructure(origin), ExtractStructure(*translated))
	status := StatusDone
	if len(reasons) > 0 {
		status = StatusSync
	} else {
		reasons = []string{}
	}
	return ComparisonResult{FilePath: filePath, Status: status, Reasons: reasons}
}
