package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

// RosterSize is the number of people offered in the selection control.
const RosterSize = 4

// Person is one entry of the roster file.
type Person struct {
	Name string `json:"name" validate:"required"`
}

type rosterFile struct {
	People []Person `json:"people"`
}

// LoadRoster reads the people file and returns its first RosterSize entries.
func LoadRoster(path string) ([]Person, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading roster: %v", ErrConfig, err)
	}
	return ParseRoster(data)
}

func ParseRoster(data []byte) ([]Person, error) {
	var file rosterFile
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: malformed roster: %v", ErrConfig, err)
	}

	if len(file.People) < RosterSize {
		return nil, fmt.Errorf("%w: roster needs %d people, found %d", ErrConfig, RosterSize, len(file.People))
	}

	people := file.People[:RosterSize]
	validate := validator.New()
	for i := range people {
		if err := validate.Struct(people[i]); err != nil {
			return nil, fmt.Errorf("%w: roster entry %d: %v", ErrConfig, i, err)
		}
	}

	return people, nil
}

// Names returns the display names of the roster in order.
func Names(people []Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	return names
}
