// Package board loads pin maps of DIO boards from YAML:
//
//	name: cactusphere
//	inputs:
//	  - {id: 0, num: 12}
//	  - {id: 1, num: 15}
//	outputs:
//	  - {id: 0, num: 0}
//	  - {id: 1, num: 8}
package board

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/dio.go/pkg/dio"
)

type boardFile struct {
	Name    string       `yaml:"name"`
	Inputs  []dio.PinMap `yaml:"inputs"`
	Outputs []dio.PinMap `yaml:"outputs"`
}

// Parse decodes a board from YAML.
func Parse(data []byte) (dio.Board, error) {
	var f boardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return dio.Board{}, err
	}
	if len(f.Inputs) != dio.NumDI {
		return dio.Board{}, fmt.Errorf("board %q: %d inputs, expect %d", f.Name, len(f.Inputs), dio.NumDI)
	}
	if len(f.Outputs) != dio.NumDO {
		return dio.Board{}, fmt.Errorf("board %q: %d outputs, expect %d", f.Name, len(f.Outputs), dio.NumDO)
	}
	b := dio.Board{Name: f.Name}
	copy(b.Inputs[:], f.Inputs)
	copy(b.Outputs[:], f.Outputs)
	if err := b.Validate(); err != nil {
		return dio.Board{}, fmt.Errorf("board %q: %v", f.Name, err)
	}
	return b, nil
}

// Load reads a board file. An empty path selects dio.DefaultBoard.
func Load(path string) (dio.Board, error) {
	if path == "" {
		return dio.DefaultBoard, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return dio.Board{}, err
	}
	return Parse(data)
}

// Marshal encodes a board as YAML.
func Marshal(b dio.Board) ([]byte, error) {
	return yaml.Marshal(&boardFile{Name: b.Name, Inputs: b.Inputs[:], Outputs: b.Outputs[:]})
}
