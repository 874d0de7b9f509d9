//go:build windows

package spool

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modwinspool = windows.NewLazySystemDLL("winspool.drv")

	procOpenPrinterW = modwinspool.NewProc("OpenPrinterW")
	procEnumJobsW    = modwinspool.NewProc("EnumJobsW")
	procClosePrinter = modwinspool.NewProc("ClosePrinter")
)

const (
	enumAllJobs   = 0xFFFFFFFF
	jobInfoLevel1 = 1
)

// NativeStrategy enumerates jobs through the Win32 print spooler API.
type NativeStrategy struct{}

func NewNativeStrategy() *NativeStrategy { return &NativeStrategy{} }

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) PendingCount(_ context.Context, printer string) (int, error) {
	if err := modwinspool.Load(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStrategyUnavailable, err)
	}

	name, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return 0, fmt.Errorf("printer name: %w", err)
	}

	var h windows.Handle
	r1, _, e1 := procOpenPrinterW.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&h)), 0)
	if r1 == 0 {
		return 0, fmt.Errorf("OpenPrinterW: %w", e1)
	}
	defer procClosePrinter.Call(uintptr(h))

	var needed, returned uint32
	r1, _, e1 = procEnumJobsW.Call(uintptr(h), 0, enumAllJobs, jobInfoLevel1, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 != 0 {
		return int(returned), nil
	}
	if !errors.Is(e1, windows.ERROR_INSUFFICIENT_BUFFER) || needed == 0 {
		return 0, fmt.Errorf("EnumJobsW: %w", e1)
	}

	buf := make([]byte, needed)
	r1, _, e1 = procEnumJobsW.Call(uintptr(h), 0, enumAllJobs, jobInfoLevel1,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r1 == 0 {
		return 0, fmt.Errorf("EnumJobsW: %w", e1)
	}
	return int(returned), nil
}
