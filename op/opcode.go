// Package op defines the render command records that producers encode into a
// queue buffer and that executors decode on the flusher goroutine.
//
// Every record starts with a 4-byte little-endian opcode followed by its
// fields. Records are 4-byte aligned; 64-bit fields are additionally placed
// on 8-byte offsets by inserting Nop records in front of them.
//
// Encoding requires the owning queue's lock to be held and never triggers a
// flush: many encodes, one flush.
//
//	q.Lock()
//	op.Encode(q.Buffer(), op.SetColor{R: 255, A: 255})
//	op.Encode(q.Buffer(), op.FillRect{X: 10, Y: 10, W: 80, H: 40})
//	err := q.Flush(ctx, true)
//	q.Unlock()
package op

// Opcode identifies the kind of a record.
type Opcode int32

const (
	OpNop         Opcode = iota // Alignment padding
	OpSync                      // Barrier, no drawing
	OpClear                     // Fill the whole target
	OpSetColor                  // Set current color
	OpFillRect                  // Fill an axis-aligned rectangle
	OpDrawLine                  // Stroke a line segment
	OpFillPolygon               // Fill a closed polygon
	OpDrawText                  // Draw a text run
	OpSetClip                   // Set the clip rectangle
	OpResetClip                 // Remove the clip rectangle
	OpDispose                   // Release a native resource
)

var opcodeNames = [...]string{
	OpNop:         "Nop",
	OpSync:        "Sync",
	OpClear:       "Clear",
	OpSetColor:    "SetColor",
	OpFillRect:    "FillRect",
	OpDrawLine:    "DrawLine",
	OpFillPolygon: "FillPolygon",
	OpDrawText:    "DrawText",
	OpSetClip:     "SetClip",
	OpResetClip:   "ResetClip",
	OpDispose:     "Dispose",
}

// String returns the opcode name.
func (o Opcode) String() string {
	if o >= 0 && int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return "Unknown"
}

// Valid reports whether o is a known opcode.
func (o Opcode) Valid() bool {
	return o >= 0 && int(o) < len(opcodeNames)
}
