package repository

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// Minimal reader/writer for NumPy .npy matrices. The embedding matrix is
// produced offline and shipped as .npy; only 2-dimensional little-endian
// float32/float64 arrays in C order are supported.

var npyMagic = []byte("\x93NUMPY")

var (
	descrRe = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	orderRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRe = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+)\)`)
)

// ReadNPYMatrix loads a 2-D float matrix from a .npy file. float64 data is
// narrowed to float32.
func ReadNPYMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open npy file", goerr.V("path", path))
	}
	defer f.Close()

	return readNPYMatrix(f)
}

func readNPYMatrix(r io.Reader) ([][]float32, error) {
	preamble := make([]byte, 8)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return nil, goerr.Wrap(err, "failed to read npy preamble")
	}
	if string(preamble[:6]) != string(npyMagic) {
		return nil, goerr.New("not a npy file")
	}

	major := preamble[6]
	var headerLen int
	switch major {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, goerr.Wrap(err, "failed to read npy header length")
		}
		headerLen = int(l)
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, goerr.Wrap(err, "failed to read npy header length")
		}
		headerLen = int(l)
	default:
		return nil, goerr.New("unsupported npy version", goerr.V("major", major))
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, goerr.Wrap(err, "failed to read npy header")
	}
	header := string(headerBuf)

	m := descrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, goerr.New("npy header has no descr", goerr.V("header", header))
	}
	descr := m[1]

	var itemSize int
	switch descr {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, goerr.New("unsupported npy dtype", goerr.V("descr", descr))
	}

	if m := orderRe.FindStringSubmatch(header); m == nil || m[1] != "False" {
		return nil, goerr.New("fortran order npy is not supported")
	}

	m = shapeRe.FindStringSubmatch(header)
	if m == nil {
		return nil, goerr.New("npy array is not a 2-D matrix", goerr.V("header", header))
	}
	rows, _ := strconv.Atoi(m[1])
	cols, _ := strconv.Atoi(m[2])

	raw := make([]byte, rows*cols*itemSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, goerr.Wrap(err, "truncated npy data",
			goerr.V("rows", rows), goerr.V("cols", cols))
	}

	matrix := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, cols)
		for j := 0; j < cols; j++ {
			off := (i*cols + j) * itemSize
			if itemSize == 4 {
				row[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
			} else {
				row[j] = float32(math.Float64frombits(binary.LittleEndian.Uint64(raw[off:])))
			}
		}
		matrix[i] = row
	}

	return matrix, nil
}

// WriteNPYMatrix stores a 2-D float32 matrix as a version 1.0 .npy file.
// Used by the offline embedding generator.
func WriteNPYMatrix(path string, matrix [][]float32) error {
	if len(matrix) == 0 {
		return goerr.New("empty matrix")
	}
	cols := len(matrix[0])
	for i, row := range matrix {
		if len(row) != cols {
			return goerr.New("ragged matrix", goerr.V("row", i))
		}
	}

	header := "{'descr': '<f4', 'fortran_order': False, 'shape': (" +
		strconv.Itoa(len(matrix)) + ", " + strconv.Itoa(cols) + "), }"
	// Header (incl. 10 byte preamble) is padded to a 64 byte boundary, newline terminated.
	total := 10 + len(header) + 1
	pad := (64 - total%64) % 64
	padded := header
	for i := 0; i < pad; i++ {
		padded += " "
	}
	padded += "\n"

	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create npy file", goerr.V("path", path))
	}
	defer f.Close()

	if _, err := f.Write(npyMagic); err != nil {
		return goerr.Wrap(err, "failed to write npy magic")
	}
	if _, err := f.Write([]byte{1, 0}); err != nil {
		return goerr.Wrap(err, "failed to write npy version")
	}
	if err := binary.Write(f, binary.LittleEndian, uint16(len(padded))); err != nil {
		return goerr.Wrap(err, "failed to write npy header length")
	}
	if _, err := f.Write([]byte(padded)); err != nil {
		return goerr.Wrap(err, "failed to write npy header")
	}

	buf := make([]byte, 4)
	for _, row := range matrix {
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := f.Write(buf); err != nil {
				return goerr.Wrap(err, "failed to write npy data")
			}
		}
	}

	return nil
}
