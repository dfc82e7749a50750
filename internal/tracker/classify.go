package tracker

import (
	"bufio"
	"bytes"
	"os"
)

// maxClassifySize caps content read for classification ("size-capped
// at, say, 1 MiB; larger files: record metadata only, flags unknown").
const maxClassifySize = 1 << 20

// classifyContent computes the advisory pattern flags and line count for
// path. A file over maxClassifySize, or unreadable due to permissions,
// yields a record with Unknown=true and flags left false rather than an
// error — classification never crashes the caller.
func classifyContent(path string) (hasAsync, hasTryCatch, hasAPICall bool, lineCount int, unknown bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, false, false, 0, true
	}
	if fi.Size() > maxClassifySize {
		return false, false, false, 0, true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, false, false, 0, true
	}

	hasAsync = asyncPattern.Match(data)
	hasTryCatch = tryCatchPattern.Match(data)
	hasAPICall = apiCallPattern.Match(data)
	lineCount = countLines(data)
	return hasAsync, hasTryCatch, hasAPICall, lineCount, false
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n
}
