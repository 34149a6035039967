package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/ledgr/extractor/common"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".text": true,
	".csv":  true,
	".xlsx": true,
}

// Supported reports whether name has an extension the pipeline can read.
func Supported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// ReadDocument loads a single file.
func ReadDocument(path string) (common.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Document{}, err
	}
	name := filepath.Base(path)
	return common.NewDocument(name, common.KindFromName(name), data), nil
}

// CollectDocuments loads path, or every supported file directly inside it
// when it is a directory. Directory entries come back sorted by name.
func CollectDocuments(path string) ([]common.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		doc, err := ReadDocument(path)
		if err != nil {
			return nil, err
		}
		return []common.Document{doc}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	var docs []common.Document
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		doc, err := ReadDocument(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Shape picks the part of a result to render: only the transactions, only
// the summary figures, or everything.
func Shape(r Result, transactionsOnly, summaryOnly bool) any {
	if transactionsOnly {
		return r.Transactions
	}
	if summaryOnly {
		return map[string]any{
			"summary":  r.Summary,
			"issues":   r.Issues,
			"progress": r.Progress,
			"failures": r.Failures,
		}
	}
	return r
}
