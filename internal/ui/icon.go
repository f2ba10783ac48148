package ui

// iconBytes is a generated 16x16 PNG used as the tray icon.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x30, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x80, 0x02, 0x2b,
	0x2b, 0xab, 0xff, 0xa4, 0x60, 0x06, 0x74, 0xa0, 0xa4, 0xa4, 0xf4, 0x9f,
	0x14, 0xcc, 0x80, 0x6c, 0x33, 0xa9, 0x9a, 0x61, 0x18, 0xec, 0x92, 0x51,
	0x03, 0x46, 0x0d, 0x18, 0x26, 0x06, 0x50, 0x9c, 0x99, 0x28, 0xcd, 0xce,
	0x00, 0x3e, 0xe6, 0x5c, 0x40, 0x40, 0x7b, 0xe5, 0x86, 0x00, 0x00, 0x00,
	0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
