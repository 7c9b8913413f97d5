package report

// Style tags attached to cells. The serializer maps each tag to a concrete
// cell style from the StyleConfig in effect.
const (
	StyleTitle        = "title"
	StyleSubtitle     = "subtitle"
	StyleLabel        = "label"
	StyleSectionTitle = "section-title"
	StyleHeader       = "header"
	StyleGroupHeader  = "group-header"
	StyleCPU          = "cpu"
	StyleMem          = "mem"
	StyleNumber       = "number"
	StyleCritical     = "critical"
	StyleWarning      = "warning"
	StyleNormal       = "normal"
)

// StyleConfig holds the concrete appearance for each style tag. It is
// passed explicitly into rendering and serialization so reports carry no
// process-wide style state.
type StyleConfig struct {
	HeaderFill      string // column header background
	HeaderFontColor string
	TitleColor      string // report title font
	SectionColor    string // section title font
	GroupHeaderFill string // per-group banner background
	CPUFill         string // CPU metric highlight
	MemFill         string // memory metric highlight
	CriticalFill    string
	WarningFill     string
	NormalFill      string
	NumberFormat    string // numeric cell format, e.g. "0.00"
}

// DefaultStyles returns the standard palette.
func DefaultStyles() StyleConfig {
	return StyleConfig{
		HeaderFill:      "2E75B6",
		HeaderFontColor: "FFFFFF",
		TitleColor:      "2E75B6",
		SectionColor:    "4472C4",
		GroupHeaderFill: "4472C4",
		CPUFill:         "FFC7CE",
		MemFill:         "C6EFCE",
		CriticalFill:    "FFC7CE",
		WarningFill:     "FFEB9C",
		NormalFill:      "C6EFCE",
		NumberFormat:    "0.00",
	}
}
