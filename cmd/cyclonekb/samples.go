package main

import "github.com/poiesic/cyclonekb/core"

// sampleDocuments are made-up plant documents used by the demo command.
var sampleDocuments = []core.Document{
	{
		Name: "Cyclone Operations Manual",
		Text: `
CYCLONE SEPARATOR OPERATIONS

NORMAL OPERATING CONDITIONS
The cyclone separator should operate within the following parameters:
- Inlet gas temperature: 850-950°C
- Material outlet temperature: maximum 800°C
- Draft pressure: -150 to -200 mmH2O

STARTUP PROCEDURE
1. Verify all instrumentation is calibrated
2. Start combustion air fans
3. Gradually increase fuel flow
4. Monitor temperature rise carefully
5. Normal operating temperature should be reached within 2 hours

TROUBLESHOOTING
If inlet temperature drops suddenly:
- Check fuel supply system
- Verify combustion air flow
- Inspect burner condition

If draft pressure increases:
- Check for blockages in cyclone
- Inspect downstream equipment
- Verify fan operation
`,
	},
	{
		Name: "Maintenance Guide",
		Text: `
PREVENTIVE MAINTENANCE SCHEDULE

DAILY CHECKS
- Record temperature readings from all sensors
- Check pressure readings
- Visual inspection of equipment
- Verify alarm systems are operational

WEEKLY MAINTENANCE
- Calibrate temperature instruments
- Inspect refractory lining condition
- Check for unusual vibrations or noises
- Review alarm and trend data

MONTHLY MAINTENANCE
- Detailed internal inspection
- Analysis of performance trends
- Spare parts inventory check
- Update maintenance records

COMMON PROBLEMS
Temperature instability usually indicates fuel system issues.
Pressure variations often point to blockages or structural problems.
Always investigate gradual changes in performance - they often signal developing issues.
`,
	},
	{
		Name: "Safety Procedures",
		Text: `
SAFETY OPERATING PROCEDURES

PERSONAL PROTECTIVE EQUIPMENT
All personnel must wear:
- Heat resistant clothing
- Safety glasses
- Hard hat
- Steel-toed safety boots
- Hearing protection in high noise areas

EMERGENCY PROCEDURES
In case of equipment malfunction:
1. Activate emergency shutdown
2. Isolate fuel supply
3. Notify control room immediately
4. Evacuate area if necessary
5. Do not attempt repairs without proper authorization

TEMPERATURE SAFETY
- Inlet gas temperature alarm at 1000°C
- Material temperature warning at 850°C
- Emergency shutdown at 1100°C inlet temperature

DRAFT PRESSURE MONITORING
Normal operation: -150 to -200 mmH2O
Warning level: -250 mmH2O
Emergency shutdown: -300 mmH2O
`,
	},
}

var sampleQuestions = []string{
	"What is the normal operating temperature?",
	"What should I do if the temperature drops suddenly?",
	"How often should I do maintenance?",
	"What safety equipment do I need?",
	"What causes pressure variations?",
}
