package ldraw

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickscene/pkg/math"
)

// LDraw parse errors.
var (
	ErrInvalidLineType = errors.New("ldraw: invalid line type")
	ErrInvalidCommand  = errors.New("ldraw: malformed command")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCommands parses raw LDR content without resolving sub-file
// references. Both Unix and DOS line endings are accepted. Lines that
// fail to parse are logged and skipped so damaged files still load.
func ParseCommands(data []byte) []Command {
	data = bytes.TrimPrefix(data, utf8BOM)

	var cmds []Command
	for start := 0; start <= len(data); {
		end := start
		for end < len(data) && !isLineBreak(data[end]) {
			end++
		}
		line := data[start:end]
		start = end + 1

		if allSpace(line) {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			log.Error("skipping invalid line",
				zap.String("line", string(line)),
				zap.Error(err))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// parseCommand parses a single line. The line type is the first number
// on the line. Trailing content after a complete command is ignored.
func parseCommand(line []byte) (Command, error) {
	s := &scanner{line: line}
	s.skipSpace()
	id := s.takeWhile(isDigit)
	if len(id) == 0 {
		return nil, fmt.Errorf("%w: missing line type", ErrInvalidCommand)
	}
	s.skipSpace()

	switch string(id) {
	case "0":
		return parseMeta(s), nil
	case "1":
		if cmd, ok := parseSubFileRef(s); ok {
			return cmd, nil
		}
		return nil, fmt.Errorf("%w: sub-file reference", ErrInvalidCommand)
	case "2":
		if cmd, ok := parseLineCmd(s); ok {
			return cmd, nil
		}
		return nil, fmt.Errorf("%w: line", ErrInvalidCommand)
	case "3":
		if cmd, ok := parseTriangleCmd(s); ok {
			return cmd, nil
		}
		return nil, fmt.Errorf("%w: triangle", ErrInvalidCommand)
	case "4":
		if cmd, ok := parseQuadCmd(s); ok {
			return cmd, nil
		}
		return nil, fmt.Errorf("%w: quad", ErrInvalidCommand)
	case "5":
		if cmd, ok := parseOptLineCmd(s); ok {
			return cmd, nil
		}
		return nil, fmt.Errorf("%w: optional line", ErrInvalidCommand)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidLineType, id)
	}
}

// parseMeta parses a line type 0 meta command. Unrecognized content
// falls through to a comment, so this never fails.
func parseMeta(s *scanner) Command {
	mark := s.pos
	for _, p := range []func(*scanner) (Command, bool){
		parseCategory,
		parseKeywords,
		parseColour,
		parseFile,
		parseNoFile,
		parseData,
		parseBase64Data,
		parseBfc,
		parsePeTexPath,
		parsePeTexInfo,
	} {
		if cmd, ok := p(s); ok {
			return cmd
		}
		s.pos = mark
	}
	return CommentCmd{Text: string(s.takeRest())}
}

func parseCategory(s *scanner) (Command, bool) {
	if !s.tag("!CATEGORY") || !s.space() {
		return nil, false
	}
	return CategoryCmd{Category: string(s.takeRest())}, true
}

func parseKeywords(s *scanner) (Command, bool) {
	if !s.tag("!KEYWORDS") || !s.space() {
		return nil, false
	}
	notComma := func(c byte) bool { return c != ',' }
	first := s.takeWhile(notComma)
	if len(first) == 0 {
		return nil, false
	}
	keywords := []string{strings.TrimSpace(string(first))}
	for {
		mark := s.pos
		if !s.tag(",") {
			break
		}
		item := s.takeWhile(notComma)
		if len(item) == 0 {
			s.pos = mark
			break
		}
		keywords = append(keywords, strings.TrimSpace(string(item)))
	}
	return KeywordsCmd{Keywords: keywords}, true
}

func parseColour(s *scanner) (Command, bool) {
	if !s.tag("!COLOUR") || !s.space() {
		return nil, false
	}
	name := string(s.takeWhile(func(c byte) bool { return !isSpace(c) }))
	if !s.space() || !s.tag("CODE") || !s.space() {
		return nil, false
	}
	code, ok := s.colorID()
	if !ok || !s.space() || !s.tag("VALUE") || !s.space() {
		return nil, false
	}
	value, ok := s.hexColor()
	if !ok || !s.space() || !s.tag("EDGE") || !s.space() {
		return nil, false
	}
	edge, ok := s.hexColor()
	if !ok {
		return nil, false
	}

	cmd := ColourCmd{Name: name, Code: code, Value: value, Edge: edge}
	cmd.Alpha = s.colourAlpha()
	cmd.Luminance = s.colourLuminance()
	parseColorFinish(s, &cmd)
	return cmd, true
}

// parseColorFinish parses the optional finish keyword at the end of a
// !COLOUR command.
func parseColorFinish(s *scanner, cmd *ColourCmd) {
	mark := s.pos
	if !s.space() {
		s.pos = mark
		return
	}
	switch {
	case s.tagFold("CHROME"):
		cmd.Finish = FinishChrome
	case s.tagFold("PEARLESCENT"):
		cmd.Finish = FinishPearlescent
	case s.tagFold("RUBBER"):
		cmd.Finish = FinishRubber
	case s.tagFold("MATTE_METALLIC"):
		cmd.Finish = FinishMatteMetallic
	case s.tagFold("METAL"):
		cmd.Finish = FinishMetal
	default:
		if !parseMaterialFinish(s, cmd) {
			s.pos = mark
		}
	}
}

func parseMaterialFinish(s *scanner, cmd *ColourCmd) bool {
	if !s.tagFold("MATERIAL") || !s.space() {
		return false
	}
	mark := s.pos
	if g, ok := parseGlitterMaterial(s); ok {
		cmd.Finish = FinishGlitter
		cmd.Glitter = g
		return true
	}
	s.pos = mark
	if sp, ok := parseSpeckleMaterial(s); ok {
		cmd.Finish = FinishSpeckle
		cmd.Speckle = sp
		return true
	}
	s.pos = mark
	cmd.Finish = FinishOther
	cmd.Material = strings.TrimSpace(string(s.takeRest()))
	return true
}

// GLITTER VALUE v [ALPHA a] [LUMINANCE l] FRACTION f VFRACTION vf (SIZE s | MINSIZE min MAXSIZE max)
func parseGlitterMaterial(s *scanner) (*GlitterMaterial, bool) {
	if !s.tagFold("GLITTER") || !s.space() || !s.tagFold("VALUE") || !s.space() {
		return nil, false
	}
	value, ok := s.hexColor()
	if !ok {
		return nil, false
	}
	m := &GlitterMaterial{Value: value}
	m.Alpha = s.colourAlpha()
	m.Luminance = s.colourLuminance()
	if !s.space() || !s.tagFold("FRACTION") || !s.space() {
		return nil, false
	}
	m.SurfaceFraction, ok = s.float()
	if !ok || !s.space() || !s.tagFold("VFRACTION") || !s.space() {
		return nil, false
	}
	m.VolumeFraction, ok = s.float()
	if !ok || !s.space() {
		return nil, false
	}
	m.Size, ok = s.grainSize()
	if !ok {
		return nil, false
	}
	return m, true
}

// SPECKLE VALUE v [ALPHA a] [LUMINANCE l] FRACTION f (SIZE s | MINSIZE min MAXSIZE max)
func parseSpeckleMaterial(s *scanner) (*SpeckleMaterial, bool) {
	if !s.tagFold("SPECKLE") || !s.space() || !s.tagFold("VALUE") || !s.space() {
		return nil, false
	}
	value, ok := s.hexColor()
	if !ok {
		return nil, false
	}
	m := &SpeckleMaterial{Value: value}
	m.Alpha = s.colourAlpha()
	m.Luminance = s.colourLuminance()
	if !s.space() || !s.tagFold("FRACTION") || !s.space() {
		return nil, false
	}
	m.SurfaceFraction, ok = s.float()
	if !ok || !s.space() {
		return nil, false
	}
	m.Size, ok = s.grainSize()
	if !ok {
		return nil, false
	}
	return m, true
}

func parseFile(s *scanner) (Command, bool) {
	if !s.tag("FILE") || !s.space() {
		return nil, false
	}
	return FileCmd{File: strings.TrimSpace(string(s.takeRest()))}, true
}

func parseNoFile(s *scanner) (Command, bool) {
	if !s.tag("NOFILE") {
		return nil, false
	}
	return NoFileCmd{}, true
}

func parseData(s *scanner) (Command, bool) {
	if !s.tag("!DATA") || !s.space() {
		return nil, false
	}
	return DataCmd{File: string(s.takeRest())}, true
}

func parseBase64Data(s *scanner) (Command, bool) {
	if !s.tag("!:") || !s.space() {
		return nil, false
	}
	data, ok := decodeBase64(s.takeRest())
	if !ok {
		return nil, false
	}
	return Base64DataCmd{Data: data}, true
}

func parseBfc(s *scanner) (Command, bool) {
	if !s.tag("BFC") || !s.space() {
		return nil, false
	}
	switch {
	case s.tag("NOCERTIFY"):
		return BfcCmd{Statement: BfcNoCertify}, true
	case s.tag("CERTIFY"):
		return BfcCmd{Statement: BfcCertify, Winding: s.optWinding()}, true
	}
	if w, ok := s.winding(); ok {
		return BfcCmd{Statement: BfcWinding, Winding: &w}, true
	}
	switch {
	case s.tag("NOCLIP"):
		return BfcCmd{Statement: BfcNoClip}, true
	case s.tag("CLIP"):
		return BfcCmd{Statement: BfcClip, Winding: s.optWinding()}, true
	case s.tag("INVERTNEXT"):
		return BfcCmd{Statement: BfcInvertNext}, true
	}
	return nil, false
}

func parsePeTexPath(s *scanner) (Command, bool) {
	if !s.tag("PE_TEX_PATH") || !s.space() {
		return nil, false
	}
	v, ok := s.decimalI32()
	if !ok {
		return nil, false
	}
	paths := []int32{v}
	for {
		mark := s.pos
		if !s.space() {
			break
		}
		v, ok := s.decimalI32()
		if !ok {
			s.pos = mark
			break
		}
		paths = append(paths, v)
	}
	return PeTexPathCmd{Paths: paths}, true
}

func parsePeTexInfo(s *scanner) (Command, bool) {
	if !s.tag("PE_TEX_INFO") || !s.space() {
		return nil, false
	}
	cmd := PeTexInfoCmd{}
	mark := s.pos
	if t, ok := parsePeTexTransform(s); ok {
		cmd.Transform = t
	} else {
		s.pos = mark
	}
	data, ok := decodeBase64(s.takeRest())
	if !ok {
		return nil, false
	}
	cmd.Data = data
	return cmd, true
}

func parsePeTexTransform(s *scanner) (*PeTexInfoTransform, bool) {
	t, ok := s.transform()
	if !ok || !s.space() {
		return nil, false
	}
	pmin, ok := s.vec2()
	if !ok || !s.space() {
		return nil, false
	}
	pmax, ok := s.vec2()
	if !ok || !s.space() {
		return nil, false
	}
	return &PeTexInfoTransform{Transform: t, PointMin: pmin, PointMax: pmax}, true
}

func parseSubFileRef(s *scanner) (Command, bool) {
	color, ok := s.colorID()
	if !ok || !s.space() {
		return nil, false
	}
	t, ok := s.transform()
	if !ok || !s.space() {
		return nil, false
	}
	file := strings.TrimSpace(string(s.takeRest()))
	return SubFileRefCmd{Color: color, Transform: t, File: file}, true
}

func parseLineCmd(s *scanner) (Command, bool) {
	color, ok := s.colorID()
	if !ok || !s.space() {
		return nil, false
	}
	var verts [2]math.Vec3
	if !s.vecs(verts[:]) {
		return nil, false
	}
	s.skipSpace()
	return LineCmd{Color: color, Vertices: verts}, true
}

func parseTriangleCmd(s *scanner) (Command, bool) {
	color, ok := s.colorID()
	if !ok || !s.space() {
		return nil, false
	}
	var verts [3]math.Vec3
	if !s.vecs(verts[:]) {
		return nil, false
	}
	s.skipSpace()
	cmd := TriangleCmd{Color: color, Vertices: verts}
	var uvs [3]math.Vec2
	if s.uvs(uvs[:]) {
		cmd.UVs = &uvs
	}
	return cmd, true
}

func parseQuadCmd(s *scanner) (Command, bool) {
	color, ok := s.colorID()
	if !ok || !s.space() {
		return nil, false
	}
	var verts [4]math.Vec3
	if !s.vecs(verts[:]) {
		return nil, false
	}
	s.skipSpace()
	cmd := QuadCmd{Color: color, Vertices: verts}
	var uvs [4]math.Vec2
	if s.uvs(uvs[:]) {
		cmd.UVs = &uvs
	}
	return cmd, true
}

func parseOptLineCmd(s *scanner) (Command, bool) {
	color, ok := s.colorID()
	if !ok || !s.space() {
		return nil, false
	}
	var verts [2]math.Vec3
	if !s.vecs(verts[:]) {
		return nil, false
	}
	s.skipSpace()

	// Control points are not optional in the LDraw standard. Parse them
	// as optional to support Bricklink Studio files.
	var controls [2]math.Vec3
	mark := s.pos
	var parsed [2]math.Vec3
	if s.vecs(parsed[:]) {
		controls = parsed
	} else {
		s.pos = mark
	}
	return OptLineCmd{Color: color, Vertices: verts, ControlPoints: controls}, true
}

// scanner reads whitespace separated tokens from a single line.
type scanner struct {
	line []byte
	pos  int
}

func (s *scanner) rest() []byte {
	return s.line[s.pos:]
}

// takeRest consumes the remainder of the line.
func (s *scanner) takeRest() []byte {
	r := s.line[s.pos:]
	s.pos = len(s.line)
	return r
}

// skipSpace consumes any run of spaces and tabs.
func (s *scanner) skipSpace() {
	for s.pos < len(s.line) && isSpace(s.line[s.pos]) {
		s.pos++
	}
}

// space consumes at least one space or tab.
func (s *scanner) space() bool {
	if s.pos >= len(s.line) || !isSpace(s.line[s.pos]) {
		return false
	}
	s.skipSpace()
	return true
}

// tag consumes the exact token.
func (s *scanner) tag(t string) bool {
	r := s.rest()
	if len(r) < len(t) || string(r[:len(t)]) != t {
		return false
	}
	s.pos += len(t)
	return true
}

// tagFold consumes the token, matching ASCII case-insensitively.
func (s *scanner) tagFold(t string) bool {
	r := s.rest()
	if len(r) < len(t) || !bytes.EqualFold(r[:len(t)], []byte(t)) {
		return false
	}
	s.pos += len(t)
	return true
}

func (s *scanner) takeWhile(pred func(byte) bool) []byte {
	start := s.pos
	for s.pos < len(s.line) && pred(s.line[s.pos]) {
		s.pos++
	}
	return s.line[start:s.pos]
}

// float parses a decimal float: an optional sign, digits with an
// optional fraction or a leading dot, and an optional exponent.
func (s *scanner) float() (float32, bool) {
	p := s.pos
	if p < len(s.line) && (s.line[p] == '+' || s.line[p] == '-') {
		p++
	}
	digits := 0
	for p < len(s.line) && isDigit(s.line[p]) {
		p++
		digits++
	}
	if p < len(s.line) && s.line[p] == '.' {
		p++
		for p < len(s.line) && isDigit(s.line[p]) {
			p++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if p < len(s.line) && (s.line[p] == 'e' || s.line[p] == 'E') {
		q := p + 1
		if q < len(s.line) && (s.line[q] == '+' || s.line[q] == '-') {
			q++
		}
		expDigits := 0
		for q < len(s.line) && isDigit(s.line[q]) {
			q++
			expDigits++
		}
		// An exponent marker without digits invalidates the number.
		if expDigits == 0 {
			return 0, false
		}
		p = q
	}
	// The token is well formed, so the only possible error is range
	// overflow, which saturates to infinity.
	v, _ := strconv.ParseFloat(string(s.line[s.pos:p]), 32)
	s.pos = p
	return float32(v), true
}

func (s *scanner) vec2() (math.Vec2, bool) {
	var f [2]float32
	if !s.floats(f[:]) {
		return math.Vec2{}, false
	}
	return math.Vec2{X: f[0], Y: f[1]}, true
}

func (s *scanner) vec3() (math.Vec3, bool) {
	var f [3]float32
	if !s.floats(f[:]) {
		return math.Vec3{}, false
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, true
}

// floats parses len(out) floats separated by whitespace.
func (s *scanner) floats(out []float32) bool {
	for i := range out {
		if i > 0 && !s.space() {
			return false
		}
		v, ok := s.float()
		if !ok {
			return false
		}
		out[i] = v
	}
	return true
}

// vecs parses len(out) vertices separated by whitespace.
func (s *scanner) vecs(out []math.Vec3) bool {
	for i := range out {
		if i > 0 && !s.space() {
			return false
		}
		v, ok := s.vec3()
		if !ok {
			return false
		}
		out[i] = v
	}
	return true
}

// uvs parses len(out) texture coordinate pairs, restoring the position
// if the full group is not present.
func (s *scanner) uvs(out []math.Vec2) bool {
	mark := s.pos
	for i := range out {
		if i > 0 && !s.space() {
			s.pos = mark
			return false
		}
		v, ok := s.vec2()
		if !ok {
			s.pos = mark
			return false
		}
		out[i] = v
	}
	s.skipSpace()
	return true
}

func (s *scanner) transform() (Transform, bool) {
	var f [12]float32
	if !s.floats(f[:]) {
		return Transform{}, false
	}
	return Transform{
		Pos:  math.Vec3{X: f[0], Y: f[1], Z: f[2]},
		Row0: math.Vec3{X: f[3], Y: f[4], Z: f[5]},
		Row1: math.Vec3{X: f[6], Y: f[7], Z: f[8]},
		Row2: math.Vec3{X: f[9], Y: f[10], Z: f[11]},
	}, true
}

// colorID parses a color code. Some older files use hex codes like
// 0x2995220, so decimal is tried first with hex as a fallback.
func (s *scanner) colorID() (uint32, bool) {
	tok := s.takeWhile(func(c byte) bool {
		return isHexDigit(c) || c == 'x' || c == 'X'
	})
	if len(tok) == 0 {
		return 0, false
	}
	str := string(tok)
	if v, err := strconv.ParseUint(str, 10, 32); err == nil {
		return uint32(v), true
	}
	for strings.HasPrefix(str, "0x") {
		str = str[2:]
	}
	v, err := strconv.ParseUint(str, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// hexColor parses a #RRGGBB color.
func (s *scanner) hexColor() (Color, bool) {
	if !s.tag("#") {
		return Color{}, false
	}
	r, ok := s.hexByte()
	if !ok {
		return Color{}, false
	}
	g, ok := s.hexByte()
	if !ok {
		return Color{}, false
	}
	b, ok := s.hexByte()
	if !ok {
		return Color{}, false
	}
	return Color{Red: r, Green: g, Blue: b}, true
}

func (s *scanner) hexByte() (uint8, bool) {
	r := s.rest()
	if len(r) < 2 || !isHexDigit(r[0]) || !isHexDigit(r[1]) {
		return 0, false
	}
	v, err := strconv.ParseUint(string(r[:2]), 16, 8)
	if err != nil {
		return 0, false
	}
	s.pos += 2
	return uint8(v), true
}

// colourAlpha parses the optional ALPHA part of !COLOUR. Values outside
// the 0-255 range reject the whole option.
func (s *scanner) colourAlpha() *uint8 {
	mark := s.pos
	if !s.space() || !s.tag("ALPHA") || !s.space() {
		s.pos = mark
		return nil
	}
	v, ok := s.decimalU8()
	if !ok {
		s.pos = mark
		return nil
	}
	return &v
}

// colourLuminance parses the optional LUMINANCE part of !COLOUR.
func (s *scanner) colourLuminance() *uint8 {
	mark := s.pos
	if !s.space() || !s.tag("LUMINANCE") || !s.space() {
		s.pos = mark
		return nil
	}
	v, ok := s.decimalU8()
	if !ok {
		s.pos = mark
		return nil
	}
	return &v
}

func (s *scanner) decimalU8() (uint8, bool) {
	tok := s.takeWhile(isDigit)
	if len(tok) == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(string(tok), 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// decimalI32 parses a decimal integer. A leading minus is accepted for
// the -1 texture path that clears the active texture.
func (s *scanner) decimalI32() (int32, bool) {
	mark := s.pos
	neg := s.tag("-")
	tok := s.takeWhile(isDigit)
	if len(tok) == 0 {
		s.pos = mark
		return 0, false
	}
	v, err := strconv.ParseInt(string(tok), 10, 32)
	if err != nil {
		s.pos = mark
		return 0, false
	}
	if neg {
		v = -v
	}
	return int32(v), true
}

// grainSize parses SIZE s or MINSIZE min MAXSIZE max.
func (s *scanner) grainSize() (GrainSize, bool) {
	mark := s.pos
	if s.tag("SIZE") && s.space() {
		if v, ok := s.float(); ok {
			return GrainSize{Size: v}, true
		}
	}
	s.pos = mark
	if !s.tag("MINSIZE") || !s.space() {
		return GrainSize{}, false
	}
	minSize, ok := s.float()
	if !ok || !s.space() || !s.tag("MAXSIZE") || !s.space() {
		return GrainSize{}, false
	}
	maxSize, ok := s.float()
	if !ok {
		return GrainSize{}, false
	}
	return GrainSize{MinSize: minSize, MaxSize: maxSize, Ranged: true}, true
}

func (s *scanner) winding() (Winding, bool) {
	if s.tagFold("CW") {
		return WindingCw, true
	}
	if s.tagFold("CCW") {
		return WindingCcw, true
	}
	return 0, false
}

// optWinding parses an optional winding after CERTIFY or CLIP.
func (s *scanner) optWinding() *Winding {
	mark := s.pos
	if !s.space() {
		s.pos = mark
		return nil
	}
	w, ok := s.winding()
	if !ok {
		s.pos = mark
		return nil
	}
	return &w
}

// decodeBase64 decodes standard alphabet base64 with or without padding.
func decodeBase64(b []byte) ([]byte, bool) {
	if data, err := base64.StdEncoding.DecodeString(string(b)); err == nil {
		return data, true
	}
	data, err := base64.RawStdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Whitespace in LDraw files is one or more spaces or tabs.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLineBreak(c byte) bool {
	return c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func allSpace(line []byte) bool {
	for _, c := range line {
		if !isSpace(c) {
			return false
		}
	}
	return true
}
