package pagination

import "strconv"

// Visibility controls when a footer is rendered
type Visibility int

const (
	// ShowWhenPaged renders the footer only when there is more than one page
	// or the current page is not the first one
	ShowWhenPaged Visibility = iota
	ShowAlways
)

// Button is one control of a pagination footer
type Button struct {
	Target   Target
	Label    string
	Ellipsis bool
	Active   bool
	Disabled bool
}

// FooterView is the pager model for a collection.
// Visible is false when nothing should be rendered.
type FooterView struct {
	Visible    bool
	Page       int
	TotalPages int
	PageLength int
	Buttons    []Button
}

// Footer builds the pager for state s.
//
// The numbered window shows the first page, two pages either side of the
// current one and the last page. A gap of exactly one page is shown as that
// page, larger gaps collapse into an ellipsis.
func Footer(s State, vis Visibility) FooterView {
	page := s.DisplayPage()
	total := s.TotalPages

	view := FooterView{
		Page:       page,
		TotalPages: total,
		PageLength: s.PageLength,
	}
	if !(total > 1 || page != 1 || vis == ShowAlways) {
		return view
	}
	view.Visible = true

	fastBack := Button{Target: Target{Kind: TargetFastBackward}, Label: "<<"}
	stepBack := Button{Target: Target{Kind: TargetStepBackward}, Label: "<"}
	stepFwd := Button{Target: Target{Kind: TargetStepForward}, Label: ">"}
	fastFwd := Button{Target: Target{Kind: TargetFastForward}, Label: ">>"}

	if page < 2 {
		fastBack.Disabled = true
		stepBack.Disabled = true
	} else if page < 3 {
		fastBack.Disabled = true
	}
	if page >= total {
		fastFwd.Disabled = true
		stepFwd.Disabled = true
	}

	b := []Button{fastBack, stepBack}
	if page > 1 {
		b = append(b, number(1))
	}
	if page >= 6 {
		b = append(b, ellipsis())
	}
	if page == 5 {
		b = append(b, number(2))
	}
	if page > 3 {
		b = append(b, number(page-2))
	}
	if page > 2 {
		b = append(b, number(page-1))
	}

	current := number(page)
	current.Active = true
	b = append(b, current)

	if page < total-1 {
		b = append(b, number(page+1))
	}
	if page < total-2 {
		b = append(b, number(page+2))
	}
	if page == total-4 {
		b = append(b, number(total-1))
	}
	if page <= total-5 {
		b = append(b, ellipsis())
	}
	if page < total {
		b = append(b, number(total))
	}

	view.Buttons = append(b, stepFwd, fastFwd)
	return view
}

// Labels renders the buttons as short text, disabled controls in brackets
func (v FooterView) Labels() []string {
	out := make([]string, 0, len(v.Buttons))
	for _, b := range v.Buttons {
		label := b.Label
		switch {
		case b.Active:
			label = "*" + label + "*"
		case b.Disabled:
			label = "[" + label + "]"
		}
		out = append(out, label)
	}
	return out
}

func number(page int) Button {
	return Button{Target: PageTarget(page), Label: strconv.Itoa(page)}
}

func ellipsis() Button {
	return Button{Label: "...", Ellipsis: true}
}
