package fonts

// Rows are stored with the leftmost column in bit 0.
var glyphs4x7 = map[rune][7]byte{
	'0': {0x06, 0x09, 0x09, 0x09, 0x09, 0x09, 0x06},
	'1': {0x04, 0x06, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'2': {0x06, 0x09, 0x08, 0x04, 0x02, 0x01, 0x0F},
	'3': {0x07, 0x08, 0x08, 0x06, 0x08, 0x08, 0x07},
	'4': {0x04, 0x06, 0x05, 0x05, 0x0F, 0x04, 0x04},
	'5': {0x0F, 0x01, 0x07, 0x08, 0x08, 0x09, 0x06},
	'6': {0x06, 0x01, 0x01, 0x07, 0x09, 0x09, 0x06},
	'7': {0x0F, 0x08, 0x04, 0x04, 0x02, 0x02, 0x02},
	'8': {0x06, 0x09, 0x09, 0x06, 0x09, 0x09, 0x06},
	'9': {0x06, 0x09, 0x09, 0x0E, 0x08, 0x08, 0x06},
	' ': {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	'-': {0x00, 0x00, 0x00, 0x0F, 0x00, 0x00, 0x00},
	'?': {0x06, 0x09, 0x08, 0x04, 0x04, 0x00, 0x04},
	'°': {0x06, 0x09, 0x06, 0x00, 0x00, 0x00, 0x00},
	'A': {0x06, 0x09, 0x09, 0x0F, 0x09, 0x09, 0x09},
	'C': {0x06, 0x09, 0x01, 0x01, 0x01, 0x09, 0x06},
	'F': {0x0F, 0x01, 0x01, 0x07, 0x01, 0x01, 0x01},
	'P': {0x07, 0x09, 0x09, 0x07, 0x01, 0x01, 0x01},
}
