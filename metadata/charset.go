package metadata

// binaryCharset is the collation id of the "binary" character set.
const binaryCharset = 63

// CharsetWidth returns the maximum number of bytes one character takes in
// the character set of collation id. The driver keeps only the low byte of
// the collation id, so ids above 255 alias lower ones; unknown ids report 1.
func CharsetWidth(id uint8) int {
	switch {
	case id == 1, id == 84: // big5
		return 2
	case id == 12, id == 91: // ujis
		return 3
	case id == 13, id == 88: // sjis
		return 2
	case id == 19, id == 85: // euckr
		return 2
	case id == 24, id == 86: // gb2312
		return 2
	case id == 28, id == 87: // gbk
		return 2
	case id == 33, id == 76, id == 83, id >= 192 && id <= 215, id == 223: // utf8mb3
		return 3
	case id == 35, id == 90, id >= 128 && id <= 151, id == 159: // ucs2
		return 2
	case id == 45, id == 46, id >= 224 && id <= 247, id == 255: // utf8mb4
		return 4
	case id == 54, id == 55, id >= 101 && id <= 124: // utf16
		return 4
	case id == 56, id == 62: // utf16le
		return 4
	case id == 60, id == 61, id >= 160 && id <= 183: // utf32
		return 4
	case id == 95, id == 96: // cp932
		return 2
	case id == 97, id == 98: // eucjpms
		return 3
	case id >= 248 && id <= 250: // gb18030
		return 4
	}
	return 1
}
