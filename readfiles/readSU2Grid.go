package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gorans/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

// SU2Mesh is a two dimensional triangular mesh with its boundary markers
type SU2Mesh struct {
	NDim      int
	VX, VY    []float64
	Triangles [][3]int
	// Markers holds the directed boundary segments of each marker tag
	Markers     map[string][]types.EdgeInt
	MarkerOrder []string
}

func (m *SU2Mesh) NPoint() int { return len(m.VX) }

func readBCs(reader *bufio.Reader) (BCEdges map[string][]types.EdgeInt, order []string) {
	var (
		nType   int
		v1, v2  int
		err     error
		prevInd int
	)
	NBCs := readNumber(reader)
	BCEdges = make(map[string][]types.EdgeInt, NBCs)
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader)
		nEdges := readNumber(reader)
		prevInd = 0
		if _, ok := BCEdges[label]; !ok {
			BCEdges[label] = make([]types.EdgeInt, nEdges)
			order = append(order, label)
		} else {
			// A repeated tag appends its segments to the existing marker
			prevInd = len(BCEdges[label])
			BCEdges[label] = types.GrowSlice(BCEdges[label], prevInd+nEdges)
		}
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				panic(err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				panic("BCs should only contain line elements in 2D")
			}
			BCEdges[label][i+prevInd] = types.NewEdgeInt([2]int{v1, v2})
		}
	}
	return
}

func readVertices(reader *bufio.Reader) (VX, VY []float64) {
	var (
		n    int
		x, y float64
		err  error
	)
	Nv := readNumber(reader)
	VX, VY = make([]float64, Nv), make([]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			panic(err)
		}
		if n != 2 {
			panic("unable to read coordinates")
		}
		VX[i], VY[i] = x, y
	}
	return
}

func readElements(reader *bufio.Reader) (K int, EToV [][3]int) {
	var (
		n          int
		nType      int
		v1, v2, v3 int
		err        error
	)
	K = readNumber(reader)
	EToV = make([][3]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil {
			panic(err)
		}
		if n != 4 {
			panic("unable to read vertices")
		}
		if SU2ElementType(nType) != ELType_Triangle {
			panic("unable to deal with non-triangular elements right now")
		}
		EToV[k] = [3]int{v1, v2, v3}
	}
	return
}

func getToken(reader *bufio.Reader) (token string) {
	var (
		line string
		err  error
	)
	line = getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		panic(err)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		err = fmt.Errorf("unable to read label from token: [%s]", token)
		panic(err)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	var (
		err error
	)
	token := getToken(reader)
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
		panic(err)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.Trim(getLine(reader), " ")
		ind := strings.Index(line, "%")
		if ind < 0 || ind != 0 {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string) {
	var (
		err error
	)
	line, err = reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) != 0 {
			return strings.TrimRight(line, "\r")
		}
		if err == io.EOF {
			err = fmt.Errorf("early end of file")
		}
		panic(err)
	}
	line = strings.TrimRight(line[:len(line)-1], "\r") // Strip away the newline
	return
}

func skipLines(n int, reader *bufio.Reader) {
	for i := 0; i < n; i++ {
		getLine(reader)
	}
}

// ParseSU2 reads a 2D SU2 mesh from reader, malformed input panics
func ParseSU2(reader *bufio.Reader) (mesh *SU2Mesh) {
	mesh = &SU2Mesh{}
	mesh.NDim = readNumber(reader)
	if mesh.NDim != 2 {
		panic(fmt.Errorf("only 2D SU2 meshes are supported, have NDIME= %d", mesh.NDim))
	}
	_, mesh.Triangles = readElements(reader)
	mesh.VX, mesh.VY = readVertices(reader)
	mesh.Markers, mesh.MarkerOrder = readBCs(reader)
	return
}

func ReadSU2(filename string, verbose bool) (mesh *SU2Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("reading %s: %v", filename, r)
		}
	}()
	mesh = ParseSU2(bufio.NewReader(file))
	if verbose {
		fmt.Printf("Read file with %d dimensional data, %d triangles, %d points, %d markers\n",
			mesh.NDim, len(mesh.Triangles), mesh.NPoint(), len(mesh.MarkerOrder))
	}
	return
}
