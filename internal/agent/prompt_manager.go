package agent

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultPersonaPrompt = `You are Vela, a personal desktop assistant.
You are concise, direct, and slightly wry. You answer in plain prose without
markdown headers. When a request needs no action on the machine, just answer
it conversationally.`

const defaultPlannerPrompt = `You are the strategic planner for Vela, a
personal desktop assistant. Translate the user's request into an ordered list
of capability invocations by calling the propose_plan function. Use only the
capabilities listed below, with the exact parameter names each one documents.
If the request needs no action on the machine, do not call propose_plan;
reply conversationally instead.`

// PromptManager loads layered persona files from a prompts directory. The
// assistant must still boot without one, so every getter falls back to a
// built-in default instead of failing.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) GetPersonaPrompt() string {
	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return defaultPersonaPrompt
	}

	var contents []string

	// Named layers come first, everything else alphabetical after them.
	order := map[string]int{
		"persona.md":      1,
		"capabilities.md": 2,
		"user.md":         3,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") || f.Name() == "planner.md" {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: failed to read prompt file %s: %v", path, err)
			continue
		}
		contents = append(contents, string(data))
	}

	if len(contents) == 0 {
		return defaultPersonaPrompt
	}
	return strings.Join(contents, "\n\n---\n\n")
}

func (pm *PromptManager) GetPlannerPrompt() string {
	data, err := os.ReadFile(filepath.Join(pm.Directory, "planner.md"))
	if err != nil {
		return defaultPlannerPrompt
	}
	return string(data)
}
