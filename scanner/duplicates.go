package scanner

import (
	"sort"

	"github.com/focuscope/focuscope/scanner/models"
)

// DuplicateDetector groups files and function bodies by exact normalized
// content hash. This is exact-duplicate detection, not fuzzy similarity:
// near-duplicates with even a single changed token are not grouped.
type DuplicateDetector struct {
	minTokens int
}

func NewDuplicateDetector(minTokens int) *DuplicateDetector {
	return &DuplicateDetector{minTokens: minTokens}
}

// FindDuplicates scans the flattened file list and returns groups with at
// least two members. Groups are ordered by their first-occurrence location
// (path, then line); members within a group by path, then line.
func (d *DuplicateDetector) FindDuplicates(entries []models.FileEntry) []models.DuplicateGroup {
	type bucket struct {
		kind    models.DuplicateKind
		members []models.DuplicateLocation
	}

	fileBuckets := make(map[uint64]*bucket)
	funcBuckets := make(map[uint64]*bucket)

	for _, entry := range entries {
		if entry.TokenCount >= d.minTokens {
			b, ok := fileBuckets[entry.FileHash]
			if !ok {
				b = &bucket{kind: models.DuplicateFile}
				fileBuckets[entry.FileHash] = b
			}
			b.members = append(b.members, models.DuplicateLocation{
				Path:      entry.Path,
				StartLine: 1,
				Kind:      models.DuplicateFile,
			})
		}

		for _, function := range entry.Functions {
			if function.TokenCount < d.minTokens {
				continue
			}
			b, ok := funcBuckets[function.BodyHash]
			if !ok {
				b = &bucket{kind: models.DuplicateFunction}
				funcBuckets[function.BodyHash] = b
			}
			b.members = append(b.members, models.DuplicateLocation{
				Path:      entry.Path,
				Name:      function.Name,
				StartLine: function.StartLine,
				Kind:      models.DuplicateFunction,
			})
		}
	}

	sortMembers := func(b *bucket) {
		sort.Slice(b.members, func(i, j int) bool {
			if b.members[i].Path != b.members[j].Path {
				return b.members[i].Path < b.members[j].Path
			}
			return b.members[i].StartLine < b.members[j].StartLine
		})
	}

	var groups []models.DuplicateGroup
	fileGroupOf := make(map[string]uint64)
	for hash, b := range fileBuckets {
		if len(b.members) < 2 {
			continue
		}
		sortMembers(b)
		for _, member := range b.members {
			fileGroupOf[member.Path] = hash
		}
		groups = append(groups, models.DuplicateGroup{Hash: hash, Kind: b.kind, Members: b.members})
	}

	// A function group whose members all live in the same whole-file group
	// adds nothing: the file group already reports those copies.
	for hash, b := range funcBuckets {
		if len(b.members) < 2 {
			continue
		}
		sortMembers(b)
		if coveredByFileGroup(b.members, fileGroupOf) {
			continue
		}
		groups = append(groups, models.DuplicateGroup{Hash: hash, Kind: b.kind, Members: b.members})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Members[0], groups[j].Members[0]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return groups[i].Kind < groups[j].Kind
	})
	return groups
}

func coveredByFileGroup(members []models.DuplicateLocation, fileGroupOf map[string]uint64) bool {
	first, ok := fileGroupOf[members[0].Path]
	if !ok {
		return false
	}
	for _, member := range members[1:] {
		group, ok := fileGroupOf[member.Path]
		if !ok || group != first {
			return false
		}
	}
	return true
}
