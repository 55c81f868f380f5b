// Package schemas embeds the JSON Schemas of the records the tracker emits.
package schemas

import "embed"

// CandidateProfileFile is the schema of an extracted candidate record.
const CandidateProfileFile = "candidate_profile.schema.json"

//go:embed *.schema.json
var files embed.FS

// Load returns the named schema document.
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// CandidateProfile returns the candidate record schema.
func CandidateProfile() string {
	data, err := files.ReadFile(CandidateProfileFile)
	if err != nil {
		panic(err)
	}
	return string(data)
}
