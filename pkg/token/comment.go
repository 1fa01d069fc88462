package token

// Comment is a `#` line comment. Text includes the leading '#' and excludes
// the line terminator.
type Comment struct {
	Text string
	Pos  Position
}
