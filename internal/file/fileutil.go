package file

import (
	"bufio"
	"os"
)

// WriteLines 将行写入文件，整体覆盖，每行以换行符结尾
func WriteLines(fileName string, lines []string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

func CreateFolder(folderName string) error {
	if _, err := os.Stat(folderName); os.IsNotExist(err) {
		return os.MkdirAll(folderName, 0755)
	}
	return nil
}
