package config

import (
	"bytes"
	"compress/zlib"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/viper"

	"cpjudge/internal/types"
)

// maxSettingsFileBytes mirrors the original's "is this excessive for
// compiler/test info?" guard against a maliciously oversized settings file.
const maxSettingsFileBytes = 1 << 24

// LoadConfiguration reads the compiler table and environment policy from
// path. An empty path returns the built-in default (the original's
// hardcoded Themis XML, used whenever --settings is omitted).
func LoadConfiguration(path string) (types.Configuration, error) {
	if path == "" {
		return defaultConfiguration(), nil
	}
	data, err := readPossiblyCompressed(path)
	if err != nil {
		return types.Configuration{}, err
	}
	var cfg types.Configuration
	if err := parseGlobalSettings(data, &cfg); err != nil {
		return types.Configuration{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DiscoverTestcases builds the problem set by scanning testsDir: one entry
// per subdirectory, parsed from its Settings.cfg when present, or synthesized
// with the original's defaults (whole-name .INP/.OUT, the bundled
// case-insensitive line/word evaluator, subtests discovered as the
// subdirectories of that problem directory).
func DiscoverTestcases(testsDir string) (map[string]types.Testcases, error) {
	entries, err := os.ReadDir(testsDir)
	if err != nil {
		return nil, fmt.Errorf("read tests directory: %w", err)
	}

	out := make(map[string]types.Testcases)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		problemDir := filepath.Join(testsDir, name)
		settingsPath := filepath.Join(problemDir, "Settings.cfg")

		if _, err := os.Stat(settingsPath); err == nil {
			data, err := readPossiblyCompressed(settingsPath)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", settingsPath, err)
			}
			var tc types.Testcases
			if err := parseSettings(data, &tc); err != nil {
				return nil, fmt.Errorf("%s: %w", settingsPath, err)
			}
			if tc.Name == "" {
				tc.Name = name
			}
			out[name] = tc
			continue
		}

		out[name] = synthesizeTestcases(problemDir, name)
	}
	return out, nil
}

func synthesizeTestcases(problemDir, name string) types.Testcases {
	tc := types.Testcases{
		Name:          name,
		InputFile:     name + ".INP",
		OutputFile:    name + ".OUT",
		EvaluatorName: defaultEvaluatorName(),
		MemoryLimit:   1024,
		TimeLimit:     1.0,
		Mark:          1.0,
	}

	entries, err := os.ReadDir(problemDir)
	if err != nil {
		return tc
	}
	var subNames []string
	for _, e := range entries {
		if e.IsDir() {
			subNames = append(subNames, e.Name())
		}
	}
	sort.Strings(subNames)
	for _, sn := range subNames {
		tc.Subtests = append(tc.Subtests, types.Subtest{Name: sn, MemoryLimit: -1, TimeLimit: -1, Mark: 1.0})
	}
	return tc
}

func defaultEvaluatorName() string {
	if runtime.GOOS == "windows" {
		return "C1LinesWordsIgnoreCase.dll"
	}
	return "libC1LinesWordsIgnoreCase.so"
}

// readPossiblyCompressed mirrors the original's optional transparent zlib
// layer: try to inflate, and if the stream isn't zlib at all, fall back to
// the raw bytes untouched.
func readPossiblyCompressed(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSettingsFileBytes {
		return nil, fmt.Errorf("settings file too large (possibly crafted input)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return raw, nil
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return raw, nil
	}
	return inflated, nil
}

// parseGlobalSettings tries YAML, then JSON, then TOML (all via viper), then
// falls back to the Themis XML dialect, matching the original's
// parseGlobalSettingsFormat cascade minus the ordering around XML: viper has
// no XML parser, so that branch is a dedicated encoding/xml fallback tried
// last instead of third (see DESIGN.md).
func parseGlobalSettings(data []byte, cfg *types.Configuration) error {
	for _, format := range []string{"yaml", "json", "toml"} {
		if unmarshalViper(format, data, cfg) == nil {
			return nil
		}
	}
	return parseThemisXMLConfiguration(data, cfg)
}

func parseSettings(data []byte, tc *types.Testcases) error {
	for _, format := range []string{"yaml", "json", "toml"} {
		if unmarshalViper(format, data, tc) == nil {
			return nil
		}
	}
	return parseThemisXMLSettings(data, tc)
}

func unmarshalViper(format string, data []byte, out any) error {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return err
	}
	return v.Unmarshal(out)
}

type themisXML struct {
	XMLName  xml.Name `xml:"ThemisConfiguration"`
	Compiler struct {
		Items []struct {
			Ext string `xml:"ext,attr"`
			Cmd string `xml:"cmd,attr"`
		} `xml:"Item"`
	} `xml:"CompilerConfigurations"`
	Environment struct {
		Identifier   string `xml:"Identifier,attr"`
		ContestHouse string `xml:"ContestHouse,attr"`
	} `xml:"Environment"`
}

func parseThemisXMLConfiguration(data []byte, cfg *types.Configuration) error {
	var doc themisXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings format not recognized (tried yaml, json, toml, xml): %w", err)
	}
	cfg.Environment = types.Environment{
		Identifier:   doc.Environment.Identifier,
		ContestHouse: doc.Environment.ContestHouse,
	}
	for _, item := range doc.Compiler.Items {
		if item.Cmd == "" {
			continue
		}
		cfg.Compiler = append(cfg.Compiler, types.CompilerItem{Ext: item.Ext, CommandTemplate: item.Cmd})
	}
	return nil
}

// themisTestXML is the <ExamInformation>/<TestCase> dialect the original's
// tinyxml2-based ParseTestSettings<XML> reads.
type themisTestXML struct {
	XMLName     xml.Name `xml:"ExamInformation"`
	Name        string   `xml:"Name,attr"`
	InputFile   string   `xml:"InputFile,attr"`
	OutputFile  string   `xml:"OutputFile,attr"`
	UseStdIn    bool     `xml:"UseStdIn,attr"`
	UseStdOut   bool     `xml:"UseStdOut,attr"`
	EvaluatorName string `xml:"EvaluatorName,attr"`
	Mark        float64  `xml:"Mark,attr"`
	TimeLimit   float64  `xml:"TimeLimit,attr"`
	MemoryLimit int      `xml:"MemoryLimit,attr"`
	TestCase    []struct {
		Name        string  `xml:"Name,attr"`
		Mark        float64 `xml:"Mark,attr"`
		TimeLimit   float64 `xml:"TimeLimit,attr"`
		MemoryLimit int     `xml:"MemoryLimit,attr"`
	} `xml:"TestCase"`
}

func parseThemisXMLSettings(data []byte, tc *types.Testcases) error {
	var doc themisTestXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings format not recognized (tried yaml, json, toml, xml): %w", err)
	}
	tc.Name = doc.Name
	tc.InputFile = doc.InputFile
	tc.OutputFile = doc.OutputFile
	tc.UseStdin = doc.UseStdIn
	tc.UseStdout = doc.UseStdOut
	tc.EvaluatorName = doc.EvaluatorName
	tc.Mark = doc.Mark
	tc.TimeLimit = doc.TimeLimit
	tc.MemoryLimit = doc.MemoryLimit
	for _, st := range doc.TestCase {
		tc.Subtests = append(tc.Subtests, types.Subtest{
			Name: st.Name, Mark: st.Mark, TimeLimit: st.TimeLimit, MemoryLimit: st.MemoryLimit,
		})
	}
	return nil
}

// defaultConfiguration is the original's hardcoded Themis config, used
// whenever --settings is omitted, translated from its inline XML literal.
func defaultConfiguration() types.Configuration {
	contestHouse := "/tmp"
	stackFlag := ""
	if runtime.GOOS == "windows" {
		contestHouse = `C:\ProgramData\`
		stackFlag = " -Wl,--stack,66060288"
	}

	return types.Configuration{
		Compiler: []types.CompilerItem{
			{Ext: ".cpp", CommandTemplate: `g++ -std=c++14 "%NAME%%EXT%" -pipe -O2 -s -static -lm -x c++ -o"%NAME%.exe"` + stackFlag + `|@WorkDir=%PATH%`},
			{Ext: ".c", CommandTemplate: `gcc -std=c11 "%NAME%%EXT%" -pipe -O2 -s -static -lm -x c -o"%NAME%.exe"` + stackFlag + `|@WorkDir=%PATH%`},
			{Ext: ".pas", CommandTemplate: `fpc -o"%NAME%.exe" -O2 -XS -Sg "%NAME%%EXT%"|@WorkDir=%PATH%`},
			{Ext: ".pp", CommandTemplate: `fpc -o"%NAME%.exe" -O2 -XS -Sg "%NAME%%EXT%"|@WorkDir=%PATH%`},
			{Ext: ".java", CommandTemplate: `"javac" "%NAME%%EXT%"|@WorkDir=%PATH%`},
		},
		Environment: types.Environment{
			Identifier:   "THEMISEnvironment",
			ContestHouse: contestHouse,
		},
	}
}
