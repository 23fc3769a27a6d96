// Package escpos builds raw byte buffers for ESC/POS-compatible thermal
// receipt printers. No device negotiation happens here: the output is fed
// as-is to the OS spooler in raw mode.
package escpos

// Command sequences. ESC/POS addresses hardware actions with escape-prefixed
// byte runs; these are the two the relay needs.
var (
	// DrawerKick pulses drawer pin 2 (ESC p 0 25 250): fires the cash
	// drawer's electromechanical release on Epson-compatible units.
	DrawerKick = []byte{0x1B, 'p', 0x00, 0x19, 0xFA}

	// FeedAndCut feeds the receipt clear of the tear bar and triggers a
	// partial cut (ESC i).
	FeedAndCut = []byte{'\n', '\n', '\n', '\n', 0x1B, 'i'}
)

// Build encodes a receipt into a raw print buffer: the text's UTF-8 bytes,
// two line feeds, an optional drawer kick, and the feed-and-cut trailer.
// Pure and deterministic; multi-byte characters pass through untouched and
// whether the device renders them depends on its code page.
func Build(text string, openDrawer bool) []byte {
	buf := make([]byte, 0, len(text)+2+len(DrawerKick)+len(FeedAndCut))

	buf = append(buf, text...)
	buf = append(buf, '\n', '\n')

	if openDrawer {
		buf = append(buf, DrawerKick...)
	}

	buf = append(buf, FeedAndCut...)
	return buf
}
