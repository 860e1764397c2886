package main

import (
	"bufio"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"campus-social/config"

	"github.com/go-sql-driver/mysql"
)

// 子表在前，父表在后
var tables = []string{"notification", "friendship", "student", "user"}

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg := config.LoadConfig().Database
	if err := checkDriver(cfg.Driver); err != nil {
		log.Fatal(err)
	}

	dsn := mysql.Config{
		User:                 cfg.Username,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.Database,
		Params:               map[string]string{"charset": cfg.Charset},
		ParseTime:            true,
		AllowNativePasswords: true,
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}
	fmt.Printf("Database connected: %s\n", cfg.Database)

	if !*yes && !confirm() {
		fmt.Println("Operation cancelled")
		return
	}

	// 关闭外键检查，避免约束导致删除失败
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM `%s`", table)); err != nil {
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)); err != nil {
			fmt.Printf("cleared, auto-increment reset failed: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}

	fmt.Println("\nDatabase reset completed, table structure preserved")
}

// checkDriver 只支持 mysql（AUTO_INCREMENT 与 FOREIGN_KEY_CHECKS 为 mysql 语法）
func checkDriver(driver string) error {
	if driver == "" || driver == "mysql" {
		return nil
	}
	return fmt.Errorf("reset_db only supports mysql, configured driver is %q", driver)
}

func confirm() bool {
	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables [%s]!\n", strings.Join(tables, ", "))
	fmt.Print("Type 'YES' to confirm: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "YES"
}
