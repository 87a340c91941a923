// =============================================================================
// SAS7BDAT Converter - SAS Transport (XPORT v5) Reader
// =============================================================================
//
// This package reads the first member of a SAS transport file. The layout is
// a sequence of 80-byte records:
//
//   LIBRARY header, 2 library records
//   MEMBER header, DSCRPTR header, 2 member records
//   NAMESTR header (variable count), one NAMESTR per variable (140 bytes each)
//   OBS header, observations (fixed-length rows), blank padding to 80 bytes
//
// Numbers are IBM/370 hexadecimal floats truncated to the variable length;
// characters are blank padded. Only version 5 files are supported; the
// V8/V9 extension (LIBV8 headers) is rejected.
//
// =============================================================================

package xport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// RecordSize is the fixed record length of transport files.
const RecordSize = 80

// MaxVariables is the largest variable count the 4-digit NAMESTR header
// field can hold.
const MaxVariables = 9999

// Header record prefixes. Each is followed by a numeric tail and padding.
const (
	LibraryHeader = "HEADER RECORD*******LIBRARY HEADER RECORD!!!!!!!"
	LibV8Header   = "HEADER RECORD*******LIBV8   HEADER RECORD!!!!!!!"
	MemberHeader  = "HEADER RECORD*******MEMBER  HEADER RECORD!!!!!!!"
	DescHeader    = "HEADER RECORD*******DSCRPTR HEADER RECORD!!!!!!!"
	NamestrHeader = "HEADER RECORD*******NAMESTR HEADER RECORD!!!!!!!"
	ObsHeader     = "HEADER RECORD*******OBS     HEADER RECORD!!!!!!!"
)

var (
	// ErrNotTransport is returned when the first record is not a library
	// header.
	ErrNotTransport = errors.New("not a SAS transport file")

	// ErrUnsupportedVersion is returned for V8/V9 transport files.
	ErrUnsupportedVersion = errors.New("unsupported transport version")

	// ErrTruncated is returned when the file ends inside a header section or
	// is not a whole number of records.
	ErrTruncated = errors.New("truncated transport file")
)

// =============================================================================
// TYPES
// =============================================================================

// VarType is the storage type of a variable.
type VarType int

const (
	Numeric   VarType = 1
	Character VarType = 2
)

// Variable is a decoded NAMESTR record.
type Variable struct {
	Name   string
	Label  string
	Format string
	Type   VarType

	// Length is the width of the value in each observation.
	Length int

	// Position is the byte offset of the value in each observation.
	Position int

	FormatLength   int
	FormatDecimals int
}

// Member is one data set of a transport library.
type Member struct {
	Name      string
	Label     string
	Type      string
	Variables []Variable

	// Observations holds one raw row per record, each RowLength bytes.
	Observations [][]byte

	// RowLength is the width of one observation.
	RowLength int
}

// =============================================================================
// DECODING
// =============================================================================

// Read decodes the first member of the transport file in r.
func Read(r io.Reader) (*Member, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read transport file: %w", err)
	}
	return Decode(data)
}

// Decode decodes the first member of a transport file held in memory.
func Decode(data []byte) (*Member, error) {
	if len(data) < RecordSize || !bytes.HasPrefix(data, []byte(LibraryHeader)) {
		if bytes.HasPrefix(data, []byte(LibV8Header)) {
			return nil, ErrUnsupportedVersion
		}
		return nil, ErrNotTransport
	}
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(data), RecordSize)
	}

	rd := &recordReader{data: data}
	rd.next() // library header

	lib := rd.next()
	if lib == nil || !bytes.HasPrefix(lib, []byte("SAS     ")) {
		return nil, fmt.Errorf("%w: bad library record", ErrNotTransport)
	}
	rd.next() // library modified date

	memberHdr, err := rd.expect(MemberHeader)
	if err != nil {
		return nil, err
	}
	namestrLen, err := parseField(memberHdr[74:78])
	if err != nil || (namestrLen != 140 && namestrLen != 136) {
		return nil, fmt.Errorf("%w: bad NAMESTR length %q", ErrNotTransport, memberHdr[74:78])
	}

	if _, err := rd.expect(DescHeader); err != nil {
		return nil, err
	}

	desc1 := rd.next()
	desc2 := rd.next()
	if desc2 == nil {
		return nil, fmt.Errorf("%w: missing member descriptor", ErrTruncated)
	}
	member := &Member{
		Name:  trim(desc1[8:16]),
		Label: trim(desc2[32:72]),
		Type:  trim(desc2[72:80]),
	}

	nsHdr, err := rd.expect(NamestrHeader)
	if err != nil {
		return nil, err
	}
	nvars, err := parseField(nsHdr[54:58])
	if err != nil || nvars < 0 || nvars > MaxVariables {
		return nil, fmt.Errorf("%w: bad variable count %q", ErrNotTransport, nsHdr[54:58])
	}

	nsBytes := nvars * namestrLen
	nsRecords := (nsBytes + RecordSize - 1) / RecordSize
	block := rd.take(nsRecords)
	if block == nil {
		return nil, fmt.Errorf("%w: NAMESTR block", ErrTruncated)
	}
	member.Variables = make([]Variable, nvars)
	for i := 0; i < nvars; i++ {
		v, err := decodeNamestr(block[i*namestrLen : (i+1)*namestrLen])
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i+1, err)
		}
		member.Variables[i] = v
		if end := v.Position + v.Length; end > member.RowLength {
			member.RowLength = end
		}
	}

	if _, err := rd.expect(ObsHeader); err != nil {
		return nil, err
	}

	member.Observations = splitObservations(rd.rest(), member.RowLength)
	return member, nil
}

// decodeNamestr decodes one 140 (or 136) byte variable descriptor.
func decodeNamestr(b []byte) (Variable, error) {
	v := Variable{
		Type:           VarType(be16(b[0:2])),
		Length:         be16(b[4:6]),
		Name:           trim(b[8:16]),
		Label:          trim(b[16:56]),
		Format:         trim(b[56:64]),
		FormatLength:   be16(b[64:66]),
		FormatDecimals: be16(b[66:68]),
		Position:       int(be32(b[84:88])),
	}
	if v.Type != Numeric && v.Type != Character {
		return v, fmt.Errorf("unknown variable type %d", v.Type)
	}
	if v.Length <= 0 {
		return v, fmt.Errorf("variable %q has length %d", v.Name, v.Length)
	}
	if v.Type == Numeric && (v.Length < 2 || v.Length > 8) {
		return v, fmt.Errorf("numeric variable %q has length %d", v.Name, v.Length)
	}
	return v, nil
}

// splitObservations cuts the observation section into rows. The section
// ends at the next member header or at end of file. A trailing all-blank row
// is dropped when the rows before it, padded to a whole record, already
// account for the section length.
func splitObservations(data []byte, rowLen int) [][]byte {
	for off := 0; off+RecordSize <= len(data); off += RecordSize {
		if bytes.HasPrefix(data[off:], []byte(MemberHeader)) {
			data = data[:off]
			break
		}
	}
	if rowLen == 0 {
		return nil
	}

	n := len(data) / rowLen
	for n > 0 {
		start := (n - 1) * rowLen
		if roundUp(start) != len(data) || !isBlank(data[start:start+rowLen]) {
			break
		}
		n--
	}

	rows := make([][]byte, n)
	for i := range rows {
		rows[i] = data[i*rowLen : (i+1)*rowLen]
	}
	return rows
}

// =============================================================================
// VALUE ACCESS
// =============================================================================

// Float decodes the numeric value of v in row. ok is false for any SAS
// missing value (".", "._" and ".A" through ".Z").
func (v Variable) Float(row []byte) (value float64, ok bool) {
	return IBMToFloat(row[v.Position : v.Position+v.Length])
}

// String decodes the character value of v in row, trimming trailing blanks
// and converting from Latin-1 (Windows-1252) to UTF-8.
func (v Variable) String(row []byte) (string, error) {
	raw := bytes.TrimRight(row[v.Position:v.Position+v.Length], " \x00")
	if isASCII(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode %q: %w", v.Name, err)
	}
	return string(decoded), nil
}

// =============================================================================
// HELPERS
// =============================================================================

type recordReader struct {
	data []byte
	off  int
}

func (r *recordReader) next() []byte {
	if r.off+RecordSize > len(r.data) {
		return nil
	}
	rec := r.data[r.off : r.off+RecordSize]
	r.off += RecordSize
	return rec
}

func (r *recordReader) take(n int) []byte {
	end := r.off + n*RecordSize
	if end > len(r.data) {
		return nil
	}
	block := r.data[r.off:end]
	r.off = end
	return block
}

func (r *recordReader) rest() []byte {
	return r.data[r.off:]
}

func (r *recordReader) expect(prefix string) ([]byte, error) {
	rec := r.next()
	if rec == nil {
		return nil, fmt.Errorf("%w: expected %s header", ErrTruncated, headerName(prefix))
	}
	if !bytes.HasPrefix(rec, []byte(prefix)) {
		return nil, fmt.Errorf("%w: expected %s header", ErrNotTransport, headerName(prefix))
	}
	return rec, nil
}

func headerName(prefix string) string {
	return strings.Fields(prefix[len("HEADER RECORD*******"):])[0]
}

// roundUp pads n bytes to a whole number of records.
func roundUp(n int) int {
	return (n + RecordSize - 1) / RecordSize * RecordSize
}

func parseField(b []byte) (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

func trim(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

func be16(b []byte) int {
	return int(b[0])<<8 | int(b[1])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' {
			return false
		}
	}
	return true
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
