package traj

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	pw "github.com/rmera/gopw"
)

const defaultPrec = 3

//Write!

//Writer appends one compressed section to a trajectory file, holding as
//many frames as WNext gets called. Opening is always in append mode, so
//converting several logs into the same file accumulates their frames.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
	frames    int
}

//NewWriter opens name for appending and starts a compressed section for
//frames of natoms atoms. The header map is written as-is; its "prec"
//key sets the coordinate precision (default 3) and its "compress" key
//picks the codec, "zstd" (the default) or "gzip". Both keys are filled
//in if absent. The optional compressionLevel is only meaningful for
//gzip. Only the first map is read.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*Writer, error) {
	W := new(Writer)
	var err error
	W.f, err = os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	W.natoms = natoms
	W.filename = name
	W.prec = defaultPrec
	if header == nil {
		header = map[string]string{}
	}
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec <= 0 {
			log.Printf("Invalid precision for trajectory %s. Will use the default", W.filename)
			header["prec"] = strconv.Itoa(W.prec)
		} else {
			W.prec = prec
		}
	} else {
		header["prec"] = strconv.Itoa(W.prec)
	}
	level := gzip.BestCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	switch header["compress"] {
	case "", "zstd":
		header["compress"] = "zstd"
		W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case "gzip":
		if level > gzip.BestCompression || level < gzip.HuffmanOnly {
			level = gzip.BestCompression
		}
		W.h, err = gzip.NewWriterLevel(W.f, level)
	default:
		W.f.Close()
		return nil, Error{"unsupported compression: " + header["compress"], name, []string{"NewWriter"}, true}
	}
	if err != nil {
		W.f.Close()
		return nil, Error{"can't start compressed section: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	headerstr := ""
	for k, v := range header {
		headerstr += fmt.Sprintf("%s=%v\n", k, v)
	}
	if _, err = W.h.Write([]byte(headerstr)); err != nil {
		return nil, Error{"can't write section header: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	if _, err = W.h.Write([]byte(fmt.Sprintf("** %d\n", W.natoms))); err != nil {
		return nil, Error{"can't write section header: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.writeable = true
	return W, nil
}

//WNext writes the next frame. If given, box carries the 9 components of
//the cell vectors, row-major, in Angstroms.
func (W *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	err := W.WNextEnergy(coord, math.NaN(), box...)
	if err != nil {
		return errDecorate(err, "WNext")
	}
	return nil
}

//WNextEnergy writes the next frame together with its total energy. The
//energy is only recorded when a cell is given too, and is skipped if
//NaN.
func (W *Writer) WNextEnergy(coord *v3.Matrix, energy float64, box ...[]float64) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNextEnergy"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, W.filename, []string{"WNextEnergy"}, true}
	}
	v := coord.NVecs()
	if v != W.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, W.natoms), W.filename, []string{"WNextEnergy"}, true}
	}
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		if _, err := W.h.Write([]byte(coordsEncode(floats, W.prec))); err != nil {
			return Error{err.Error(), W.filename, []string{"WNextEnergy"}, true}
		}
	}
	term := "*"
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		term += fmt.Sprintf(" %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
		if !math.IsNaN(energy) {
			term += fmt.Sprintf(" %.8f", energy)
		}
	}
	if _, err := W.h.Write([]byte(term + "\n")); err != nil {
		return Error{err.Error(), W.filename, []string{"WNextEnergy"}, true}
	}
	W.frames++
	return nil
}

//WNextSnapshot writes a parsed snapshot as the next frame, cell and
//energy included.
func (W *Writer) WNextSnapshot(s *pw.Snapshot) error {
	err := W.WNextEnergy(s.Coords, s.Energy, s.Box())
	if err != nil {
		return errDecorate(err, "WNextSnapshot")
	}
	return nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.natoms
}

//Frames returns the number of frames written so far through this handle.
func (W *Writer) Frames() int {
	return W.frames
}

//Close flushes the compressed section and closes the file. The handle
//can not be used after this call.
func (W *Writer) Close() {
	if W == nil {
		return
	}
	if W.writeable {
		W.h.Close()
		W.f.Close()
	}
	W.writeable = false
	return
}

//SnapshotHeader builds a section header for trajectories of the system
//in s: precision, codec, per-atom symbols and masses (space-separated,
//in order) and the energy unit.
func SnapshotHeader(s *pw.Snapshot, prec int, compress string) map[string]string {
	m := map[string]string{
		"prec":     strconv.Itoa(prec),
		"compress": compress,
		"symbols":  strings.Join(s.Symbols(), " "),
		"energies": "eV",
		"program":  "pw.x",
	}
	masses := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		masses[i] = strconv.FormatFloat(s.Atom(i).Mass, 'f', 3, 64)
	}
	m["masses"] = strings.Join(masses, " ")
	return m
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	x := int(math.RoundToEven(f[0] * p))
	y := int(math.RoundToEven(f[1] * p))
	z := int(math.RoundToEven(f[2] * p))
	return fmt.Sprintf("%d %d %d\n", x, y, z)
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill formated coordinates line: %s", strings.TrimSpace(str))
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//Read!

//Reader reads trajectory files written by Writer, crossing the section
//boundaries left by successive appends transparently.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
	energy   float64
	header   map[string]string
}

//zstd's Decoder has a Close that returns nothing, missing
//io.ReadCloser by that much.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

//Close closes the object. It can not be used after this call
func (z zstdql) Close() error {
	z.closeql()
	return nil
}

//New opens a trajectory for reading and returns a pointer to the
//handle, a map with the metadata of the first section (or nil if none
//is found) and error or nil. The codec is recognized from the magic
//bytes, so renamed files still open fine.
func New(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.natoms = -1 //just so we know if things don't work
	R.energy = math.NaN()
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	raw := bufio.NewReader(R.f)
	magic, err := raw.Peek(2)
	if err != nil {
		return nil, nil, Error{"can't read file start: " + err.Error(), name, []string{"New"}, true}
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(raw) //multistream by default
		if err != nil {
			return nil, nil, Error{"can't open gzip section: " + err.Error(), name, []string{"New"}, true}
		}
		R.z = gz
	} else {
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return nil, nil, Error{"can't open zstd section: " + err.Error(), name, []string{"New"}, true}
		}
		R.z = zstdql{zr.Close, zr}
	}
	R.h = bufio.NewReader(R.z)
	m, err := R.readHeader("")
	if err != nil {
		return nil, nil, err
	}
	R.header = m
	R.readable = true
	return R, m, nil
}

//readHeader consumes one section header. Its first line may have been
//read already by the caller, and is then passed in first. Updates
//natoms and prec, enforcing that appended sections keep the atom count.
func (R *Reader) readHeader(first string) (map[string]string, error) {
	m := make(map[string]string)
	str := first
	var err error
	for {
		if str == "" {
			str, err = R.h.ReadString('\n')
			if err != nil {
				return nil, Error{"can't read section header: " + err.Error(), R.filename, []string{"readHeader"}, true}
			}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, Error{"can't read atom number from: " + str, R.filename, []string{"readHeader"}, true}
			}
			nat, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, Error{"can't read atom number from: " + str, R.filename, []string{"readHeader"}, true}
			}
			if R.natoms >= 0 && nat != R.natoms {
				return nil, Error{fmt.Sprintf("appended section with %d atoms in a trajectory of %d", nat, R.natoms), R.filename, []string{"readHeader"}, true}
			}
			R.natoms = nat
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, Error{"malformed header line: " + str, R.filename, []string{"readHeader"}, true}
		}
		m[kv[0]] = kv[1]
		str = ""
	}
	R.prec = defaultPrec
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec <= 0 {
			log.Printf("Invalid precision in trajectory %s. Will assume the default", R.filename)
		} else {
			R.prec = prec
		}
	}
	return m, nil
}

//Readable returns true if the handle is readable (if it is possible to call Next on it)
func (R *Reader) Readable() bool {
	return R.readable
}

//Next puts in the given matrix (c) the coordinates for the next frame
//of the trajectory and, if asked for, the cell vectors in box. A nil c
//reads and checks the frame without keeping it. Returns a
//chem.LastFrameError on normal termination.
func (R *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	if !R.readable {
		return Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != R.natoms {
		return Error{fmt.Sprintf("%d rows given for frames of %d atoms", c.NVecs(), R.natoms), R.filename, []string{"Next"}, true}
	}
	str, err := R.h.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			//nothing bad happened here, the trajectory just ended.
			R.Close()
			return newlastFrameError(R.filename, "Next")
		}
		return Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	if strings.Contains(str, "=") {
		//a section appended by a later run starts here
		m, err := R.readHeader(str)
		if err != nil {
			return errDecorate(err, "Next")
		}
		for k, v := range m {
			R.header[k] = v
		}
		str, err = R.h.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				//a section with a header and no frames; harmless.
				R.Close()
				return newlastFrameError(R.filename, "Next")
			}
			return Error{err.Error(), R.filename, []string{"Next"}, true}
		}
	}
	var temp [3]float64
	for i := 0; i < R.natoms; i++ {
		if i > 0 {
			str, err = R.h.ReadString('\n')
			if err != nil {
				return Error{"frame truncated: " + err.Error(), R.filename, []string{"Next"}, true}
			}
		}
		if err := coordsDecode(str, &temp, R.prec); err != nil {
			return Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue //the frame is read and checked, just not kept
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	str, err = R.h.ReadString('\n')
	if err != nil {
		return Error{"can't read the frame termination mark: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(str, "*") {
		return Error{"wrong number of atoms in frame, stray line: " + strings.TrimSpace(str), R.filename, []string{"Next"}, true}
	}
	R.energy = math.NaN()
	fields := strings.Fields(strings.TrimSpace(str))
	if len(fields) >= 10 {
		if len(box) > 0 && len(box[0]) >= 9 {
			var errbox error
			for j, v := range fields[1:10] {
				box[0][j], errbox = strconv.ParseFloat(v, 64)
				if errbox != nil {
					break
				}
			}
			//If any of the values fails we just zero the whole thing
			//and log, no error returned.
			if errbox != nil {
				log.Printf("Failed to read the cell in a frame from %s", R.filename)
				for j := range box[0] {
					box[0][j] = 0.0
				}
			}
		}
		if len(fields) >= 11 {
			if e, err := strconv.ParseFloat(fields[10], 64); err == nil {
				R.energy = e
			}
		}
	} else if len(box) > 0 && len(box[0]) >= 9 {
		log.Printf("Trajectory file %s does not contain cell information in this frame", R.filename) //just a heads-up
	}
	return nil
}

//FrameEnergy returns the total energy attached to the last frame read
//by Next, NaN if that frame carried none.
func (R *Reader) FrameEnergy() float64 {
	return R.energy
}

//Symbols returns the per-atom element symbols recorded in the section
//headers read so far, nil if the writer stored none.
func (R *Reader) Symbols() []string {
	if R.header["symbols"] == "" {
		return nil
	}
	return strings.Fields(R.header["symbols"])
}

//Masses returns the per-atom masses recorded in the section headers
//read so far, nil if absent or unparseable.
func (R *Reader) Masses() []float64 {
	fields := strings.Fields(R.header["masses"])
	if len(fields) == 0 {
		return nil
	}
	masses := make([]float64, len(fields))
	for i, v := range fields {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		masses[i] = m
	}
	return masses
}

//Close closes the object, and marks it as unreadable
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.z.Close()
	R.f.Close()
	R.readable = false
	return
}

//Len returns the number of atoms in each frame of the trajectory.
func (R *Reader) Len() int {
	return R.natoms
}

//Errors

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//if used with a non-chem.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(chem.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for traj trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("traj file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since E.deco is a slice, and hence a pointer itself.

	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "traj") associated to the error
func (err Error) Format() string { return "traj" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	NilCoordinates = "Given nil coordinates"
)

//lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//lastFrameError does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "traj" }

func (E lastFrameError) Decorate(deco string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
