package layout

// Metrics holds the terminal-cell geometry of the builder
type Metrics struct {
	RowHeight        int `mapstructure:"row_height"`
	Indent           int `mapstructure:"indent"`
	RowWidth         int `mapstructure:"row_width"`
	ConnectorWidth   int `mapstructure:"connector_width"`
	FieldWidth       int `mapstructure:"field_width"`
	OperatorWidth    int `mapstructure:"operator_width"`
	GroupHeader      int `mapstructure:"group_header"`
	GroupFooter      int `mapstructure:"group_footer"`
	Border           int `mapstructure:"border"`
	EmptyGroupWidth  int `mapstructure:"empty_group_width"`
	EmptyGroupHeight int `mapstructure:"empty_group_height"`
}

// DefaultMetrics returns the built-in geometry
func DefaultMetrics() Metrics {
	return Metrics{
		RowHeight:        1,
		Indent:           4,
		RowWidth:         60,
		ConnectorWidth:   7,
		FieldWidth:       18,
		OperatorWidth:    16,
		GroupHeader:      1,
		GroupFooter:      1,
		Border:           1,
		EmptyGroupWidth:  36,
		EmptyGroupHeight: 3,
	}
}

// Normalize replaces unset or inconsistent values with defaults
func (m Metrics) Normalize() Metrics {
	d := DefaultMetrics()
	if m.RowHeight <= 0 {
		m.RowHeight = d.RowHeight
	}
	if m.Indent <= 0 {
		m.Indent = d.Indent
	}
	if m.ConnectorWidth <= 0 {
		m.ConnectorWidth = d.ConnectorWidth
	}
	if m.FieldWidth <= 0 {
		m.FieldWidth = d.FieldWidth
	}
	if m.OperatorWidth <= 0 {
		m.OperatorWidth = d.OperatorWidth
	}
	if m.GroupHeader < 0 {
		m.GroupHeader = d.GroupHeader
	}
	if m.GroupFooter < 0 {
		m.GroupFooter = d.GroupFooter
	}
	if m.Border < 0 {
		m.Border = d.Border
	}
	minRow := m.ConnectorWidth + m.FieldWidth + m.OperatorWidth + 4
	if m.RowWidth < minRow {
		m.RowWidth = max(d.RowWidth, minRow)
	}
	if m.EmptyGroupWidth <= 0 {
		m.EmptyGroupWidth = d.EmptyGroupWidth
	}
	if m.EmptyGroupHeight < 2*m.Border+1 {
		m.EmptyGroupHeight = 2*m.Border + 1
	}
	if m.Indent <= m.Border {
		m.Indent = m.Border + 1
	}
	return m
}

// ValueWidth is the width left for the value box of a row
func (m Metrics) ValueWidth() int {
	return m.RowWidth - m.ConnectorWidth - m.FieldWidth - m.OperatorWidth - 3
}
