package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rahul/vela/internal/governance"
)

// workspacePath resolves name inside root and rejects escapes.
func workspacePath(root, name string) (string, error) {
	target := filepath.Join(root, name)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe path attempt: %s", name)
	}
	return target, nil
}

// FileManager handles non-destructive workspace file operations.
type FileManager struct {
	Root string
}

func NewFileManager(root string) *FileManager {
	absRoot, _ := filepath.Abs(root)
	return &FileManager{Root: absRoot}
}

func (f *FileManager) Name() string { return "file_manager" }

func (f *FileManager) Description() string {
	return "Manage files in the local workspace: read, write, list, and mkdir."
}

func (f *FileManager) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"enum":        []string{"read", "write", "list", "mkdir"},
				"description": "The operation to perform",
			},
			"filename": map[string]any{
				"type":        "string",
				"description": "The name of the file or directory",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write (only for 'write' command)",
			},
		},
		"required": []string{"command", "filename"},
	}
}

func (f *FileManager) Authorization() governance.Level { return governance.LevelOpen }

func (f *FileManager) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Command  string `json:"command"`
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	targetPath, err := workspacePath(f.Root, args.Filename)
	if err != nil {
		return "", err
	}

	switch args.Command {
	case "read":
		data, err := os.ReadFile(targetPath)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case "write":
		if err := os.WriteFile(targetPath, []byte(args.Content), 0644); err != nil {
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		return fmt.Sprintf("Successfully wrote to %s", args.Filename), nil
	case "list":
		entries, err := os.ReadDir(targetPath)
		if err != nil {
			return "", fmt.Errorf("failed to list directory: %w", err)
		}
		var output strings.Builder
		for _, entry := range entries {
			typeStr := "file"
			if entry.IsDir() {
				typeStr = "dir"
			}
			fmt.Fprintf(&output, "[%s] %s\n", typeStr, entry.Name())
		}
		if output.Len() == 0 {
			return "Directory is empty", nil
		}
		return output.String(), nil
	case "mkdir":
		if err := os.MkdirAll(targetPath, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
		return fmt.Sprintf("Successfully created directory %s", args.Filename), nil
	default:
		return "Invalid command. Use 'read', 'write', 'list', or 'mkdir'", nil
	}
}

// FileSearch finds files in the workspace by partial name.
type FileSearch struct {
	Root string
}

func NewFileSearch(root string) *FileSearch {
	absRoot, _ := filepath.Abs(root)
	return &FileSearch{Root: absRoot}
}

func (f *FileSearch) Name() string { return "file_search" }

func (f *FileSearch) Description() string {
	return "Search the workspace for files whose name contains the given text."
}

func (f *FileSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filename": map[string]any{
				"type":        "string",
				"description": "Partial file name to search for",
			},
		},
		"required": []string{"filename"},
	}
}

func (f *FileSearch) Authorization() governance.Level { return governance.LevelOpen }

func (f *FileSearch) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.Filename == "" {
		return "Error: filename is required", nil
	}

	needle := strings.ToLower(args.Filename)
	var matches []string
	filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if len(matches) >= 5 {
			return filepath.SkipAll
		}
		if !d.IsDir() && strings.Contains(strings.ToLower(d.Name()), needle) {
			matches = append(matches, path)
		}
		return nil
	})

	if len(matches) == 0 {
		return "No files in the workspace match that description.", nil
	}
	return "Found the following matches:\n" + strings.Join(matches, "\n"), nil
}

// DeleteItem removes a file or empty directory from the workspace. The
// action is irreversible, so it runs only after user confirmation.
type DeleteItem struct {
	Root string
}

func NewDeleteItem(root string) *DeleteItem {
	absRoot, _ := filepath.Abs(root)
	return &DeleteItem{Root: absRoot}
}

func (d *DeleteItem) Name() string { return "delete_item" }

func (d *DeleteItem) Description() string {
	return "Delete a file or empty directory from the workspace. Irreversible."
}

func (d *DeleteItem) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Workspace-relative path of the item to delete",
			},
		},
		"required": []string{"path"},
	}
}

func (d *DeleteItem) Authorization() governance.Level { return governance.LevelConfirm }

func (d *DeleteItem) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	targetPath, err := workspacePath(d.Root, args.Path)
	if err != nil {
		return "", err
	}
	if err := os.Remove(targetPath); err != nil {
		return "", fmt.Errorf("failed to delete: %w", err)
	}
	return fmt.Sprintf("Successfully deleted %s", args.Path), nil
}

// Shred overwrites a file before removing it. Secure deletion is never
// grantable through conversation, so it sits at the restricted tier.
type Shred struct {
	Root string
}

func NewShred(root string) *Shred {
	absRoot, _ := filepath.Abs(root)
	return &Shred{Root: absRoot}
}

func (s *Shred) Name() string { return "shred" }

func (s *Shred) Description() string {
	return "Overwrite a workspace file with zeros and delete it. Unrecoverable."
}

func (s *Shred) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Workspace-relative path of the file to shred",
			},
		},
		"required": []string{"path"},
	}
}

func (s *Shred) Authorization() governance.Level { return governance.LevelRestricted }

func (s *Shred) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	targetPath, err := workspacePath(s.Root, args.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "Error: shred only operates on files", nil
	}
	if err := os.WriteFile(targetPath, make([]byte, info.Size()), info.Mode()); err != nil {
		return "", fmt.Errorf("failed to overwrite file: %w", err)
	}
	if err := os.Remove(targetPath); err != nil {
		return "", fmt.Errorf("failed to delete: %w", err)
	}
	return fmt.Sprintf("Shredded %s", args.Path), nil
}
