package templog

// XORChecksum folds every byte of data with XOR. Empty input yields 0.
func XORChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// Command frames a payload for the Optris serial protocol by appending its
// checksum. Single byte commands are their own checksum and are sent bare.
func Command(payload ...byte) []byte {
	if len(payload) <= 1 {
		return append([]byte(nil), payload...)
	}
	cmd := make([]byte, 0, len(payload)+1)
	cmd = append(cmd, payload...)
	return append(cmd, XORChecksum(payload))
}
