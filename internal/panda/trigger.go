package panda

import "strings"

// Muon trigger object categories. Each category is one slot of
// Muon.TriggerMatch.
const (
	MuonTrigIsoMu24 = iota
	MuonTrigIsoTkMu24
	MuonTrigIsoMu27
	MuonTrigMu50
	MuonTrigTkMu50
	MuonTrigMu17Mu8FirstLeg
	MuonTrigMu17Mu8SecondLeg
	NTriggerObjects
)

// TriggerObjectName holds the category names, "f" + configuration name.
var TriggerObjectName = [NTriggerObjects]string{
	"fIsoMu24",
	"fIsoTkMu24",
	"fIsoMu27",
	"fMu50",
	"fTkMu50",
	"fMu17Mu8FirstLeg",
	"fMu17Mu8SecondLeg",
}

// TriggerCategoryKey returns the configuration key of category i.
func TriggerCategoryKey(i int) string {
	return strings.TrimPrefix(TriggerObjectName[i], "f")
}

// TriggerCategoryIndex returns the category whose configuration key is key.
func TriggerCategoryIndex(key string) (int, bool) {
	for i := range NTriggerObjects {
		if TriggerCategoryKey(i) == key {
			return i, true
		}
	}
	return -1, false
}

// DocEntry documents one slot of an indexed array branch.
type DocEntry struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// DocTree documents the meaning of the slots of an array branch.
type DocTree struct {
	Name    string     `json:"name"`
	Entries []DocEntry `json:"entries"`
}

// MakeDocTree creates a documentation tree from slot titles.
func MakeDocTree(name string, titles []string) DocTree {
	t := DocTree{Name: name, Entries: make([]DocEntry, len(titles))}
	for i, title := range titles {
		t.Entries[i] = DocEntry{Index: i, Title: title}
	}
	return t
}
