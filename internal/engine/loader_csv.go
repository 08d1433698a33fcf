package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"flightdash/internal/models"

	"github.com/labstack/gommon/log"
)

// --- 1. FAST ZERO-ALLOC PARSERS ---

func unsafeToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

var pow10 = [...]float64{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12, 1e13, 1e14, 1e15}

// fastInt parses "2015" -> 2015. ok is false for anything but plain digits.
func fastInt(b []byte) (int32, bool) {
	if len(b) == 0 || len(b) > 9 {
		return 0, false
	}
	var n int32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int32(c-'0')
	}
	return n, true
}

// fastFloat parses "123.45" -> 123.45 with a single correctly rounded
// division. Signs, exponents and long mantissas report ok=false.
func fastFloat(b []byte) (float64, bool) {
	if len(b) == 0 || len(b) > 16 {
		return 0, false
	}
	var mant uint64
	decimals, digits := 0, 0
	seenDot := false
	for _, c := range b {
		switch {
		case c == '.' && !seenDot:
			seenDot = true
		case c >= '0' && c <= '9':
			mant = mant*10 + uint64(c-'0')
			digits++
			if seenDot {
				decimals++
			}
		default:
			return 0, false
		}
	}
	if digits == 0 || digits > 15 {
		return 0, false
	}
	return float64(mant) / pow10[decimals], true
}

// --- 2. LINE SPLITTING ---

var sep = []byte{','}

// alignLine advances pos to the start of the next line, so that adjacent
// chunks agree on which one owns a boundary line.
func alignLine(content []byte, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(content) {
		return len(content)
	}
	if i := bytes.IndexByte(content[pos:], '\n'); i != -1 {
		return pos + i + 1
	}
	return len(content)
}

// splitFields cuts a CSV line into fields. Lines containing quotes go
// through encoding/csv; everything else is split in place.
func splitFields(line []byte, dst [][]byte) ([][]byte, error) {
	dst = dst[:0]
	if bytes.IndexByte(line, '"') != -1 {
		rec, err := csv.NewReader(bytes.NewReader(line)).Read()
		if err != nil {
			return nil, err
		}
		for _, f := range rec {
			dst = append(dst, []byte(f))
		}
		return dst, nil
	}
	rest := line
	for {
		field, tail, found := bytes.Cut(rest, sep)
		dst = append(dst, field)
		if !found {
			return dst, nil
		}
		rest = tail
	}
}

// --- 3. MAIN LOADER ---

// csvChunk is what one worker produces: local columns plus a local country
// dictionary that is remapped into the global one afterwards.
type csvChunk struct {
	start int // byte offset of the chunk in the data section

	years  []int32
	values []float64
	types  []models.MovementType
	units  []models.Unit
	ids    []int32

	cMap  map[string]int32
	cList []string

	errLine int // 1-based line within the chunk; 0 = no error
	err     error
}

// LoadCSV parses a comma-separated file with a header row. Data rows are
// parsed in parallel chunks, then merged in file order.
func LoadCSV(path string) (*Dataset, error) {
	log.Debugf("Loading %s (parallel chunks)...", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(path, "read", err)
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	// Header row
	var header []byte
	if idx := bytes.IndexByte(content, '\n'); idx != -1 {
		header, content = content[:idx], content[idx+1:]
	} else {
		header, content = content, nil
	}
	headerFields, err := splitFields(bytes.TrimRight(header, "\r"), nil)
	if err != nil {
		return nil, loadErr(path, "header", err)
	}
	names := make([]string, len(headerFields))
	for i, f := range headerFields {
		names[i] = string(f)
	}
	lay, err := newLayout(names)
	if err != nil {
		return nil, loadErr(path, "header", err)
	}

	numWorkers := runtime.NumCPU()
	if len(content) < 1<<16 {
		numWorkers = 1
	}
	chunkSize := len(content) / numWorkers
	chunks := make([]*csvChunk, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		end := (i + 1) * chunkSize
		if i == numWorkers-1 {
			end = len(content)
		}
		wg.Add(1)
		go func(idx int, start, end int) {
			defer wg.Done()
			start, end = alignLine(content, start), alignLine(content, end)
			if idx == numWorkers-1 {
				end = len(content)
			}
			chunks[idx] = parseChunk(content, start, end, lay)
		}(i, i*chunkSize, end)
	}
	wg.Wait()

	// First error in file order wins; its line number counts the header.
	for _, c := range chunks {
		if c.err != nil {
			line := 1 + bytes.Count(content[:c.start], []byte{'\n'}) + c.errLine
			return nil, loadErr(path, fmt.Sprintf("line %d", line), c.err)
		}
	}

	return mergeChunks(chunks), nil
}

func parseChunk(content []byte, start, end int, lay layout) *csvChunk {
	ch := &csvChunk{start: start, cMap: make(map[string]int32)}
	if start >= end {
		return ch
	}
	chunk := content[start:end]
	width := lay.width()

	var fields [][]byte
	field := func(pos int) string { return unsafeToString(fields[pos]) }

	pos, line := 0, 0
	for pos < len(chunk) {
		line++
		nextPos := len(chunk)
		if i := bytes.IndexByte(chunk[pos:], '\n'); i != -1 {
			nextPos = pos + i
		}
		raw := bytes.TrimRight(chunk[pos:nextPos], "\r")
		pos = nextPos + 1

		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		var err error
		if fields, err = splitFields(raw, fields); err != nil {
			ch.errLine, ch.err = line, err
			return ch
		}
		if len(fields) < width {
			ch.errLine, ch.err = line, fmt.Errorf("expected at least %d fields, got %d", width, len(fields))
			return ch
		}
		obs, err := lay.parse(field)
		if err != nil {
			ch.errLine, ch.err = line, err
			return ch
		}

		id, ok := ch.cMap[obs.Country]
		if !ok {
			id = int32(len(ch.cList))
			name := strings.Clone(obs.Country) // detach from the file buffer
			ch.cList = append(ch.cList, name)
			ch.cMap[name] = id
		}
		ch.ids = append(ch.ids, id)
		ch.years = append(ch.years, int32(obs.Year))
		ch.values = append(ch.values, obs.Value)
		ch.types = append(ch.types, obs.Type)
		ch.units = append(ch.units, obs.Unit)
	}
	return ch
}

// mergeChunks concatenates worker output in file order and remaps the local
// dictionaries onto one global dictionary.
func mergeChunks(chunks []*csvChunk) *Dataset {
	total := 0
	for _, c := range chunks {
		total += len(c.values)
	}

	ds := &Dataset{
		years:      make([]int32, 0, total),
		values:     make([]float64, 0, total),
		types:      make([]models.MovementType, 0, total),
		units:      make([]models.Unit, 0, total),
		countryIDs: make([]int32, 0, total),
	}

	gMap := make(map[string]int32)
	for _, c := range chunks {
		remap := make([]int32, len(c.cList))
		for lid, s := range c.cList {
			gid, exists := gMap[s]
			if !exists {
				gid = int32(len(ds.countryDict))
				ds.countryDict = append(ds.countryDict, s)
				gMap[s] = gid
			}
			remap[lid] = gid
		}
		for _, id := range c.ids {
			ds.countryIDs = append(ds.countryIDs, remap[id])
		}
		ds.years = append(ds.years, c.years...)
		ds.values = append(ds.values, c.values...)
		ds.types = append(ds.types, c.types...)
		ds.units = append(ds.units, c.units...)
	}
	ds.seal()
	return ds
}
