package layout

import (
	"encoding/json"
	"os"
)

// MarshalDebug 将合成结果编码为缩进 JSON，便于调试或可视化。
func MarshalDebug(c *Composition) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// WriteDebugJSON 将合成结果写入 path。
func WriteDebugJSON(c *Composition, path string) error {
	if c == nil {
		return nil
	}
	data, err := MarshalDebug(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
