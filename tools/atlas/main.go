// 給 atlas 使用的 schema loader，把 gorm model 轉成 SQL 輸出
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"drivebid/models"
)

func main() {
	statements, err := gormschema.New("postgres").Load(
		&models.User{},
		&models.Vehicle{},
		&models.Auction{},
		&models.Bid{},
		&models.Inquiry{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, statements)
}
