package main

import (
	"fmt"
	"strings"
)

// menuItem represents a single gate choice in the menu.
type menuItem struct {
	name        string
	gateType    string // builder name passed to circuit.Op
	symbol      string
	needsTarget bool
	needsParams bool
	paramHint   string
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// gateMenu defines the gate picker categories and items.
var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gateType: "h", symbol: "H"},
			{name: "Pauli-X (NOT)", gateType: "x", symbol: "X"},
			{name: "Pauli-Y", gateType: "y", symbol: "Y"},
			{name: "Pauli-Z", gateType: "z", symbol: "Z"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gateType: "rx", symbol: "RX", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Y", gateType: "ry", symbol: "RY", needsParams: true, paramHint: "pi/2"},
			{name: "Rotate Z", gateType: "rz", symbol: "RZ", needsParams: true, paramHint: "pi/4"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gateType: "cx", symbol: "●─⊕", needsTarget: true},
		},
	},
}

// selectedItem returns the highlighted menu entry.
func (m Model) selectedItem() menuItem {
	return gateMenu[m.menuCat].items[m.menuItem]
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Add Gate on q[%d]", m.cursorQubit)))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range gateMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(gateMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 38)))
	sb.WriteString("\n")

	cat := gateMenu[m.menuCat]
	for i, item := range cat.items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →target"))
		}
		if item.needsParams {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", item.paramHint)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
