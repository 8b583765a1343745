package pages

import "strconv"

// Layout names the host page elements pagegrab relies on.
type Layout struct {
	PageCountID   string `yaml:"page_count_id"`
	ContinueID    string `yaml:"continue_id"`
	SurfacePrefix string `yaml:"surface_prefix"`
	ReadyAttr     string `yaml:"ready_attr"`
	ReadyValue    string `yaml:"ready_value"`
	TitleSelector string `yaml:"title_selector"`
	TitleAttr     string `yaml:"title_attr"`
}

const DefaultTitle = "pages"

func DefaultLayout() Layout {
	return Layout{
		PageCountID:   "pageNumInput",
		ContinueID:    "continueButton",
		SurfacePrefix: "page_",
		ReadyAttr:     "lz",
		ReadyValue:    "1",
		TitleSelector: "h1",
		TitleAttr:     "title",
	}
}

// WithDefaults fills every empty field from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()
	if l.PageCountID == "" {
		l.PageCountID = def.PageCountID
	}
	if l.ContinueID == "" {
		l.ContinueID = def.ContinueID
	}
	if l.SurfacePrefix == "" {
		l.SurfacePrefix = def.SurfacePrefix
	}
	if l.ReadyAttr == "" {
		l.ReadyAttr = def.ReadyAttr
	}
	if l.ReadyValue == "" {
		l.ReadyValue = def.ReadyValue
	}
	if l.TitleSelector == "" {
		l.TitleSelector = def.TitleSelector
	}
	if l.TitleAttr == "" {
		l.TitleAttr = def.TitleAttr
	}

	return l
}

func (l Layout) SurfaceID(pageNo int) string {
	return l.SurfacePrefix + strconv.Itoa(pageNo)
}
