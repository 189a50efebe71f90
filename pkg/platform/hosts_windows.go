// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

func defaultHostsFile() string {
	sysDir, err := windows.GetSystemDirectory()
	if err != nil || sysDir == "" {
		root := os.Getenv("SystemRoot")
		if root == "" {
			root = `C:\Windows`
		}
		sysDir = filepath.Join(root, "System32")
	}
	return filepath.Join(sysDir, "drivers", "etc", "hosts")
}
