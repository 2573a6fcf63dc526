// adminpass печатает bcrypt-хэш пароля консоли администратора для ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ignatzorin/freelance-escrow/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "adminpass: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("adminpass", pflag.ContinueOnError)
	fromStdin := flagSet.Bool("stdin", false, "читать пароль из stdin без запроса (для скриптов)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	password, err := readPassword(stdin, *fromStdin)
	if err != nil {
		return err
	}

	hash, err := service.HashAdminPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func readPassword(stdin *os.File, fromStdin bool) (string, error) {
	fd := int(stdin.Fd())
	if fromStdin || !term.IsTerminal(fd) {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("чтение пароля: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Пароль: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("чтение пароля: %w", err)
	}
	fmt.Fprint(os.Stderr, "Повторите: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("чтение пароля: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("пароли не совпадают")
	}
	return string(first), nil
}
