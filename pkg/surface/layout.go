package surface

import (
	"errors"
	"fmt"
)

// MaxColumns is the number of columns a single-digit column index can address
const MaxColumns = 9

// Identifier validation errors
var (
	ErrInvalidIdentifier = errors.New("invalid control identifier")
	ErrInvalidColumn     = errors.New("invalid control column")
	ErrRowOutOfRange     = errors.New("control row out of range")
)

// IdentifierError reports a control identifier that cannot be resolved
// against a device layout
type IdentifierError struct {
	ID     ControlID
	Device string
	Err    error
}

func (e *IdentifierError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("control %q: %v", string(e.ID), e.Err)
	}
	return fmt.Sprintf("control %q on %s: %v", string(e.ID), e.Device, e.Err)
}

func (e *IdentifierError) Unwrap() error {
	return e.Err
}

// DeviceLayout describes the physical arrangement of a control surface.
// The zero value has no rows. A DeviceLayout is never modified after
// NewLayout returns it.
type DeviceLayout struct {
	name         string
	columnStarts []int
}

// NewLayout creates a layout from the first control number of each row,
// bottom row first
func NewLayout(name string, columnStarts ...int) DeviceLayout {
	starts := make([]int, len(columnStarts))
	copy(starts, columnStarts)
	return DeviceLayout{name: name, columnStarts: starts}
}

// Name returns the device name
func (l DeviceLayout) Name() string {
	return l.name
}

// Rows returns the number of rows
func (l DeviceLayout) Rows() int {
	return len(l.columnStarts)
}

// ColumnStarts returns a copy of the per-row column start offsets
func (l DeviceLayout) ColumnStarts() []int {
	starts := make([]int, len(l.columnStarts))
	copy(starts, l.columnStarts)
	return starts
}

// ParseControlID splits a control identifier into column and row.
// Only the shape of the identifier is checked here, not the layout bounds.
func ParseControlID(id ControlID) (column, row int, err error) {
	s := string(id)
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, 0, &IdentifierError{ID: id, Err: ErrInvalidIdentifier}
	}
	column = int(s[0] - '0')
	row = int(s[1] - '0')
	if column < 1 {
		return 0, 0, &IdentifierError{ID: id, Err: ErrInvalidColumn}
	}
	return column, row, nil
}

// ResolveControlNumber converts a control identifier into the flat control
// number used by the device: columnStarts[row] + column - 1
func ResolveControlNumber(id ControlID, layout DeviceLayout) (int, error) {
	column, row, err := ParseControlID(id)
	if err != nil {
		var idErr *IdentifierError
		if errors.As(err, &idErr) {
			idErr.Device = layout.name
		}
		return 0, err
	}
	if row >= len(layout.columnStarts) {
		return 0, &IdentifierError{
			ID:     id,
			Device: layout.name,
			Err:    fmt.Errorf("%w: %w (row %d, layout has %d)", ErrInvalidIdentifier, ErrRowOutOfRange, row, len(layout.columnStarts)),
		}
	}
	return layout.columnStarts[row] + column - 1, nil
}

// Identify maps a flat control number back to its identifier. When rows
// overlap the lowest matching row wins. All MaxColumns columns are
// considered; Preset.Identify limits them to the physical ones.
func (l DeviceLayout) Identify(control int) (ControlID, bool) {
	return l.identify(control, MaxColumns)
}

func (l DeviceLayout) identify(control, columns int) (ControlID, bool) {
	for row, start := range l.columnStarts {
		column := control - start + 1
		if column >= 1 && column <= columns && row <= 9 {
			return ControlID([]byte{byte('0' + column), byte('0' + row)}), true
		}
	}
	return "", false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
