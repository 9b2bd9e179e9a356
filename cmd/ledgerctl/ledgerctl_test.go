package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/brokerledger/internal/matching"
	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/utils"
)

func TestPrintReconcile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReconcile(&buf, 4, nil))
	assert.Equal(t, "open auto tasks: 4\n", buf.String())

	buf.Reset()
	err := printReconcile(&buf, 2, errors.Join(errors.New("upsert AUTO_PROP_INFO:1"), errors.New("resolve 9")))
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "open auto tasks: 2")
	assert.Contains(t, buf.String(), "failed: resolve 9")

	buf.Reset()
	err = printReconcile(&buf, 0, errors.New("load properties"))
	assert.EqualError(t, err, "load properties")
	assert.Empty(t, buf.String())
}

func TestPrintTasks(t *testing.T) {
	due := "2026-02-13 15:00"
	task := models.Task{ID: 7, Status: models.TaskOpen, Kind: models.KindViewingPrep, Title: "[일정 준비] 방문", DueAt: &due}
	task.SetEntity(models.ViewingRef(3))

	var buf bytes.Buffer
	require.NoError(t, printTasks(&buf, []models.Task{task, {ID: 8, Status: models.TaskDone, Kind: models.KindManual, Title: "전화"}}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "VIEWING:3")
	assert.Contains(t, lines[1], due)
	assert.Contains(t, lines[2], "none")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printMatches(&buf, nil))
	assert.Equal(t, "no matching properties\n", buf.String())

	p := &models.Property{ID: 2, Tag: models.TagShop, AddressDetail: "상가 105호", DealSale: true, PriceSaleEok: 3}
	buf.Reset()
	require.NoError(t, printMatches(&buf, []matching.Result{{PropertyID: 2, Score: 40, Reasons: []string{"거래유형 일치"}, Property: p}}))
	assert.Contains(t, buf.String(), "거래유형 일치")
	assert.Contains(t, buf.String(), "매매 30천만원")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("API_JWT_SECRET", "s3cret")
	t.Setenv("LEDGER_TZ", "UTC")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--subject", "desk"})
	require.NoError(t, rootCmd.Execute())

	claims, err := utils.ValidateToken(strings.TrimSpace(out.String()), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "desk", claims["sub"])
}
