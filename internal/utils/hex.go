package utils

// BytesToHex formats b as space-separated uppercase hex pairs ("66 5C 9A").
func BytesToHex(b []byte) string {
	const hexd = "0123456789ABCDEF"
	if len(b) == 0 {
		return ""
	}
	out := make([]byte, 0, len(b)*3-1)
	for i, x := range b {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, hexd[x>>4], hexd[x&0x0F])
	}
	return string(out)
}

// Hex2 formats a single byte as "0xNN".
func Hex2(v byte) string {
	const hexd = "0123456789ABCDEF"
	return string([]byte{'0', 'x', hexd[v>>4], hexd[v&0x0F]})
}
