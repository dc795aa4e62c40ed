package utils

import (
	"strings"
	"testing"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"유효한 인터페이스 - eth0", "eth0", false},
		{"유효한 인터페이스 - ens3f0", "ens3f0", false},
		{"유효한 인터페이스 - VLAN", "bond0.100", false},
		{"빈 문자열", "", true},
		{"너무 긴 이름", strings.Repeat("a", 16), true},
		{"슬래시 포함", "eth/0", true},
		{"공백 포함", "eth 0", true},
		{"점 하나", ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSysctlKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"유효한 키", "net.core.rmem_max", false},
		{"인터페이스 포함 키", "net.ipv4.conf.eth0.rp_filter", false},
		{"빈 문자열", "", true},
		{"점 없음", "rmem_max", true},
		{"공백 포함", "net.core. rmem_max", true},
		{"값 포함", "net.core.rmem_max=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSysctlKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSysctlKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSysctlBlock(t *testing.T) {
	tests := []struct {
		name    string
		block   []byte
		wantErr bool
	}{
		{
			name:    "유효한 블록",
			block:   []byte("# header\nnet.core.rmem_max = 67108864\nnet.ipv4.tcp_rmem = 4096 87380 33554432\n"),
			wantErr: false,
		},
		{
			name:    "빈 블록",
			block:   []byte{},
			wantErr: true,
		},
		{
			name:    "등호 없음",
			block:   []byte("net.core.rmem_max 67108864\n"),
			wantErr: true,
		},
		{
			name:    "빈 값",
			block:   []byte("net.core.rmem_max =\n"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSysctlBlock(tt.block)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSysctlBlock() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
